package freedict

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/owl-backend/internal/provider"
)

const (
	defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	defaultTimeout = 10 * time.Second
	retryDelay     = 500 * time.Millisecond
)

// Provider fetches dictionary data from the FreeDictionary API.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider. An empty baseURL selects the public
// FreeDictionary endpoint and a zero timeout selects the default.
func NewProvider(baseURL string, timeout time.Duration, logger *slog.Logger) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "freedict"),
	}
}

// FetchWord fetches the dictionary entries for word.
// Returns nil, nil if the word is not found (HTTP 404). Any other non-200
// status is reported as *provider.StatusError.
func (p *Provider) FetchWord(ctx context.Context, word string) (*provider.WordResult, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(word)

	p.log.DebugContext(ctx, "freedict request", slog.String("word", word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("freedict: create request: %w", err)
	}

	resp, err := p.doWithRetry(ctx, req, word)
	if err != nil {
		p.log.ErrorContext(ctx, "freedict request failed", slog.String("word", word), slog.String("error", err.Error()))
		return nil, fmt.Errorf("freedict: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &provider.StatusError{Provider: "freedict", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("freedict: read body: %w", err)
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("freedict: decode json: %w", err)
	}

	result := mapAPIResponse(entries)

	p.log.DebugContext(ctx, "freedict response",
		slog.String("word", word),
		slog.Int("status", resp.StatusCode),
		slog.Int("meanings", len(result.Meanings)),
		slog.Int("phonetics", len(result.Phonetics)),
	)

	return result, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (p *Provider) doWithRetry(ctx context.Context, req *http.Request, word string) (*http.Response, error) {
	resp, err := p.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	p.log.WarnContext(ctx, "freedict retry", slog.String("word", word), slog.String("reason", reason))

	// Close body from the failed attempt before retrying.
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	timer := time.NewTimer(retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return p.httpClient.Do(req)
}

// mapAPIResponse converts the API entries into a provider.WordResult.
// Multiple entries (different etymologies) are merged: meanings and source
// URLs concatenated, phonetics deduplicated by transcription text.
func mapAPIResponse(entries []apiEntry) *provider.WordResult {
	result := &provider.WordResult{
		Phonetics:  []provider.PhoneticResult{},
		Meanings:   []provider.MeaningResult{},
		SourceURLs: []string{},
	}

	if len(entries) == 0 {
		return result
	}

	result.Word = entries[0].Word

	// Key: transcription text, Value: index in result.Phonetics.
	seenTranscriptions := make(map[string]int)
	seenSources := make(map[string]struct{})

	for _, entry := range entries {
		for _, m := range entry.Meanings {
			meaning := provider.MeaningResult{
				PartOfSpeech: m.PartOfSpeech,
				Definitions:  make([]provider.DefinitionResult, 0, len(m.Definitions)),
			}
			for _, def := range m.Definitions {
				if strings.TrimSpace(def.Definition) == "" {
					continue
				}
				d := provider.DefinitionResult{
					Definition: def.Definition,
					Synonyms:   nonNil(def.Synonyms),
					Antonyms:   nonNil(def.Antonyms),
				}
				if def.Example != "" {
					ex := def.Example
					d.Example = &ex
				}
				meaning.Definitions = append(meaning.Definitions, d)
			}
			result.Meanings = append(result.Meanings, meaning)
		}

		for _, ph := range entry.Phonetics {
			pron := mapPhonetic(ph)
			if pron == nil {
				continue
			}

			if pron.Text != nil {
				key := *pron.Text
				if idx, exists := seenTranscriptions[key]; exists {
					// If existing entry has no audio but this one does, update it.
					if result.Phonetics[idx].AudioURL == nil && pron.AudioURL != nil {
						result.Phonetics[idx].AudioURL = pron.AudioURL
						result.Phonetics[idx].Region = pron.Region
					}
					continue
				}
				seenTranscriptions[key] = len(result.Phonetics)
			}

			result.Phonetics = append(result.Phonetics, *pron)
		}

		for _, src := range entry.SourceURLs {
			if _, ok := seenSources[src]; ok || src == "" {
				continue
			}
			seenSources[src] = struct{}{}
			result.SourceURLs = append(result.SourceURLs, src)
		}
	}

	return result
}

// mapPhonetic converts an API phonetic to a PhoneticResult.
// Returns nil if both text and audio are empty.
func mapPhonetic(ph apiPhonetic) *provider.PhoneticResult {
	if ph.Text == "" && ph.Audio == "" {
		return nil
	}

	pron := &provider.PhoneticResult{}

	if ph.Text != "" {
		t := ph.Text
		pron.Text = &t
	}

	if ph.Audio != "" {
		a := ph.Audio
		pron.AudioURL = &a
		pron.Region = inferRegion(ph.Audio)
	}

	return pron
}

// inferRegion attempts to determine the pronunciation region from the audio URL.
func inferRegion(audioURL string) *string {
	lower := strings.ToLower(audioURL)
	for _, region := range []string{"us", "uk", "au", "ca"} {
		if strings.Contains(lower, "-"+region+".") || strings.Contains(lower, "-"+region+"-") {
			r := strings.ToUpper(region)
			return &r
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
