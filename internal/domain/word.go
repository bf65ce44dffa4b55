package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Term is a cached headword. WordNormalized is unique across the cache.
type Term struct {
	ID             uuid.UUID
	Word           string
	WordNormalized string
	CreatedAt      time.Time
}

// Phonetic is a pronunciation of a term.
type Phonetic struct {
	ID       uuid.UUID
	TermID   uuid.UUID
	Text     *string
	AudioURL *string
	Region   *string
	Position int
}

// Meaning groups the definitions of a term under one part of speech.
type Meaning struct {
	ID           uuid.UUID
	TermID       uuid.UUID
	PartOfSpeech string
	Position     int

	Definitions []Definition
}

// Definition is a single sense of a meaning.
type Definition struct {
	ID        uuid.UUID
	MeaningID uuid.UUID
	Text      string
	Example   *string
	Synonyms  []string
	Antonyms  []string
	ImageURL  *string
	Emoji     *string
	Position  int
}

// Word is the fully assembled cached record of a term, shaped like a remote
// dictionary response. A Word is either complete or absent; readers never see
// a term without the children it was stored with.
type Word struct {
	Term       Term
	Phonetics  []Phonetic
	Meanings   []Meaning
	SourceURLs []string
}

// Validate checks the fields required to store a word.
func (w *Word) Validate() error {
	var errs []FieldError
	if NormalizeWord(w.Term.Word) == "" {
		errs = append(errs, FieldError{Field: "word", Message: "required"})
	}
	for i, m := range w.Meanings {
		for j, d := range m.Definitions {
			if d.Text == "" {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("meanings[%d].definitions[%d]", i, j),
					Message: "text required",
				})
			}
		}
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Clone returns a deep copy of w.
func (w *Word) Clone() *Word {
	if w == nil {
		return nil
	}
	out := &Word{
		Term:       w.Term,
		Phonetics:  make([]Phonetic, len(w.Phonetics)),
		Meanings:   make([]Meaning, len(w.Meanings)),
		SourceURLs: slices.Clone(w.SourceURLs),
	}
	for i, p := range w.Phonetics {
		p.Text = cloneString(p.Text)
		p.AudioURL = cloneString(p.AudioURL)
		p.Region = cloneString(p.Region)
		out.Phonetics[i] = p
	}
	for i, m := range w.Meanings {
		defs := make([]Definition, len(m.Definitions))
		for j, d := range m.Definitions {
			d.Example = cloneString(d.Example)
			d.ImageURL = cloneString(d.ImageURL)
			d.Emoji = cloneString(d.Emoji)
			d.Synonyms = slices.Clone(d.Synonyms)
			d.Antonyms = slices.Clone(d.Antonyms)
			defs[j] = d
		}
		m.Definitions = defs
		out.Meanings[i] = m
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// DefinitionCount returns the number of definitions across all meanings.
func (w *Word) DefinitionCount() int {
	n := 0
	for _, m := range w.Meanings {
		n += len(m.Definitions)
	}
	return n
}

// PrimaryPronunciation returns the first phonetic with a transcription, if any.
func (w *Word) PrimaryPronunciation() *string {
	for _, p := range w.Phonetics {
		if p.Text != nil && *p.Text != "" {
			return p.Text
		}
	}
	return nil
}
