// Package changefeed tells other processes sharing the same storage about
// word cache and word list changes, and applies the changes they announce.
package changefeed

import (
	"encoding/json"
	"fmt"

	"github.com/heartmarshall/owl-backend/internal/domain"
)

// Kind names what changed.
type Kind string

const (
	// KindList means a word list was mutated; receivers reload it.
	KindList Kind = "list"
	// KindWord means one cached word was stored or forgotten.
	KindWord Kind = "word"
	// KindPurge means many cached words may be gone.
	KindPurge Kind = "purge"
)

// Event is one announced change.
type Event struct {
	Kind   Kind   `json:"kind"`
	List   string `json:"list,omitempty"`
	Word   string `json:"word,omitempty"`
	Origin string `json:"origin,omitempty"`
}

// Encode renders e as a bus payload.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	return string(b), nil
}

// Decode parses a bus payload and rejects events this version cannot apply.
func Decode(payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}

	switch e.Kind {
	case KindList:
		if !domain.WordList(e.List).IsValid() {
			return Event{}, fmt.Errorf("decode event: unknown list %q", e.List)
		}
	case KindWord:
		if domain.NormalizeWord(e.Word) == "" {
			return Event{}, fmt.Errorf("decode event: word required")
		}
	case KindPurge:
	default:
		return Event{}, fmt.Errorf("decode event: unknown kind %q", e.Kind)
	}
	return e, nil
}
