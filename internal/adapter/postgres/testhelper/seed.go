package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/owl-backend/internal/domain"
)

// UniqueWord returns prefix plus a short random suffix so parallel tests never
// collide on the unique word_normalized column.
func UniqueWord(prefix string) string {
	return prefix + "-" + uuid.New().String()[:8]
}

func strPtr(s string) *string { return &s }

// SeedTerm inserts a bare term row and returns it.
func SeedTerm(t *testing.T, pool *pgxpool.Pool, word string) domain.Term {
	t.Helper()

	term := domain.Term{
		ID:             uuid.New(),
		Word:           word,
		WordNormalized: domain.NormalizeWord(word),
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(context.Background(),
		`INSERT INTO terms (id, word, word_normalized, created_at) VALUES ($1, $2, $3, $4)`,
		term.ID, term.Word, term.WordNormalized, term.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedTerm insert: %v", err)
	}

	return term
}

// SeedWord inserts a term with 2 phonetics and 2 meanings (each having 2 definitions)
// plus one source URL. Returns the fully populated domain.Word.
func SeedWord(t *testing.T, pool *pgxpool.Pool, word string) domain.Word {
	t.Helper()
	ctx := context.Background()

	w := domain.Word{Term: SeedTerm(t, pool, word)}

	for i := range 2 {
		p := domain.Phonetic{
			ID:       uuid.New(),
			TermID:   w.Term.ID,
			Text:     strPtr("/wɜːd/"),
			AudioURL: strPtr("https://example.com/" + w.Term.WordNormalized + "-us.mp3"),
			Region:   strPtr("US"),
			Position: i,
		}
		_, err := pool.Exec(ctx,
			`INSERT INTO phonetics (id, term_id, text, audio_url, region, position) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.TermID, p.Text, p.AudioURL, p.Region, p.Position,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedWord insert phonetic: %v", err)
		}
		w.Phonetics = append(w.Phonetics, p)
	}

	for i, pos := range []string{"noun", "verb"} {
		m := domain.Meaning{ID: uuid.New(), TermID: w.Term.ID, PartOfSpeech: pos, Position: i}
		_, err := pool.Exec(ctx,
			`INSERT INTO meanings (id, term_id, part_of_speech, position) VALUES ($1, $2, $3, $4)`,
			m.ID, m.TermID, m.PartOfSpeech, m.Position,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedWord insert meaning: %v", err)
		}

		for j := range 2 {
			d := domain.Definition{
				ID:        uuid.New(),
				MeaningID: m.ID,
				Text:      pos + " definition " + uuid.New().String()[:4],
				Example:   strPtr("an example"),
				Synonyms:  []string{"alpha", "beta"},
				Antonyms:  []string{},
				Position:  j,
			}
			_, err := pool.Exec(ctx,
				`INSERT INTO definitions (id, meaning_id, text, example, synonyms, antonyms, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				d.ID, d.MeaningID, d.Text, d.Example, d.Synonyms, d.Antonyms, d.Position,
			)
			if err != nil {
				t.Fatalf("testhelper: SeedWord insert definition: %v", err)
			}
			m.Definitions = append(m.Definitions, d)
		}

		w.Meanings = append(w.Meanings, m)
	}

	source := "https://en.wiktionary.org/wiki/" + w.Term.WordNormalized
	_, err := pool.Exec(ctx,
		`INSERT INTO term_sources (term_id, url, position) VALUES ($1, $2, 0)`,
		w.Term.ID, source,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedWord insert source: %v", err)
	}
	w.SourceURLs = []string{source}

	return w
}
