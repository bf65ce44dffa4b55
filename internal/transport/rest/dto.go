package rest

import (
	"time"

	"github.com/heartmarshall/owl-backend/internal/domain"
)

type wordResponse struct {
	Word       string             `json:"word"`
	Phonetics  []phoneticResponse `json:"phonetics"`
	Meanings   []meaningResponse  `json:"meanings"`
	SourceURLs []string           `json:"sourceUrls"`
	CachedAt   time.Time          `json:"cachedAt"`
}

type phoneticResponse struct {
	Text   *string `json:"text,omitempty"`
	Audio  *string `json:"audio,omitempty"`
	Region *string `json:"region,omitempty"`
}

type meaningResponse struct {
	PartOfSpeech string               `json:"partOfSpeech"`
	Definitions  []definitionResponse `json:"definitions"`
}

type definitionResponse struct {
	Definition string   `json:"definition"`
	Example    *string  `json:"example,omitempty"`
	Synonyms   []string `json:"synonyms"`
	Antonyms   []string `json:"antonyms"`
	ImageURL   *string  `json:"imageUrl,omitempty"`
	Emoji      *string  `json:"emoji,omitempty"`
}

type lookupResponse struct {
	wordResponse
	FromCache bool `json:"fromCache"`
}

type randomResponse struct {
	Word   string `json:"word"`
	Source string `json:"source"`
}

type listResponse struct {
	List  string   `json:"list"`
	Words []string `json:"words"`
}

func toWordResponse(w *domain.Word) wordResponse {
	resp := wordResponse{
		Word:       w.Term.Word,
		Phonetics:  make([]phoneticResponse, 0, len(w.Phonetics)),
		Meanings:   make([]meaningResponse, 0, len(w.Meanings)),
		SourceURLs: w.SourceURLs,
		CachedAt:   w.Term.CreatedAt,
	}
	if resp.SourceURLs == nil {
		resp.SourceURLs = []string{}
	}

	for _, p := range w.Phonetics {
		resp.Phonetics = append(resp.Phonetics, phoneticResponse{
			Text:   p.Text,
			Audio:  p.AudioURL,
			Region: p.Region,
		})
	}

	for _, m := range w.Meanings {
		mr := meaningResponse{
			PartOfSpeech: m.PartOfSpeech,
			Definitions:  make([]definitionResponse, 0, len(m.Definitions)),
		}
		for _, d := range m.Definitions {
			mr.Definitions = append(mr.Definitions, definitionResponse{
				Definition: d.Text,
				Example:    d.Example,
				Synonyms:   orEmpty(d.Synonyms),
				Antonyms:   orEmpty(d.Antonyms),
				ImageURL:   d.ImageURL,
				Emoji:      d.Emoji,
			})
		}
		resp.Meanings = append(resp.Meanings, mr)
	}

	return resp
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
