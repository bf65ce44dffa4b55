// Package ninja fetches random English words from the API Ninjas randomword endpoint.
package ninja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/heartmarshall/owl-backend/internal/provider"
)

const (
	defaultBaseURL = "https://api.api-ninjas.com/v1"
	defaultTimeout = 5 * time.Second
	maxBodyBytes   = 64 << 10
)

// ErrNoAPIKey is returned when the provider is used without an API key.
var ErrNoAPIKey = errors.New("ninja: API key not configured")

// Provider fetches random words from API Ninjas.
type Provider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider. An empty baseURL selects the public endpoint.
func NewProvider(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "ninja"),
	}
}

// randomWordResponse accepts both {"word": "owl"} and {"word": ["owl"]};
// the API has returned each shape over time.
type randomWordResponse struct {
	Word json.RawMessage `json:"word"`
}

// RandomWord returns one random word. Non-200 responses are reported as
// *provider.StatusError.
func (p *Provider) RandomWord(ctx context.Context) (string, error) {
	if p.apiKey == "" {
		return "", ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/randomword", nil)
	if err != nil {
		return "", fmt.Errorf("ninja: create request: %w", err)
	}
	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.WarnContext(ctx, "ninja request failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("ninja: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &provider.StatusError{Provider: "ninja", StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("ninja: read body: %w", err)
	}

	var payload randomWordResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("ninja: decode json: %w", err)
	}

	word, err := decodeWord(payload.Word)
	if err != nil {
		return "", err
	}

	p.log.DebugContext(ctx, "ninja random word", slog.String("word", word))
	return word, nil
}

func decodeWord(raw json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return strings.TrimSpace(single), nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", fmt.Errorf("ninja: unexpected word field %s", string(raw))
	}
	for _, w := range list {
		if w = strings.TrimSpace(w); w != "" {
			return w, nil
		}
	}
	return "", nil
}
