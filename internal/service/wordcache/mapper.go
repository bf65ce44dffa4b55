package wordcache

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/owl-backend/internal/domain"
	"github.com/heartmarshall/owl-backend/internal/provider"
)

// mapToWord converts a provider result into an unsaved domain.Word keyed by
// the looked-up word. The provider's headword is only the display form and
// falls back to the looked-up word when omitted.
func mapToWord(lookedUp string, r *provider.WordResult) *domain.Word {
	display := strings.TrimSpace(r.Word)
	if display == "" {
		display = lookedUp
	}

	w := &domain.Word{
		Term:       domain.Term{Word: display, WordNormalized: domain.NormalizeWord(lookedUp)},
		Phonetics:  make([]domain.Phonetic, 0, len(r.Phonetics)),
		Meanings:   make([]domain.Meaning, 0, len(r.Meanings)),
		SourceURLs: append([]string{}, r.SourceURLs...),
	}

	for _, p := range r.Phonetics {
		w.Phonetics = append(w.Phonetics, domain.Phonetic{
			Text:     p.Text,
			AudioURL: p.AudioURL,
			Region:   p.Region,
		})
	}

	for _, m := range r.Meanings {
		meaning := domain.Meaning{
			PartOfSpeech: m.PartOfSpeech,
			Definitions:  make([]domain.Definition, 0, len(m.Definitions)),
		}
		for _, d := range m.Definitions {
			meaning.Definitions = append(meaning.Definitions, domain.Definition{
				Text:     d.Definition,
				Example:  d.Example,
				Synonyms: d.Synonyms,
				Antonyms: d.Antonyms,
				ImageURL: d.ImageURL,
				Emoji:    d.Emoji,
			})
		}
		w.Meanings = append(w.Meanings, meaning)
	}

	return w
}

// prepareWord copies w, assigning fresh ids, parent links and positions.
// The cache key is w.Term.WordNormalized when set, otherwise the normalized
// display form.
func prepareWord(w *domain.Word, now time.Time) *domain.Word {
	display := strings.TrimSpace(w.Term.Word)
	key := domain.NormalizeWord(w.Term.WordNormalized)
	if key == "" {
		key = domain.NormalizeWord(display)
	}
	out := &domain.Word{
		Term: domain.Term{
			ID:             uuid.New(),
			Word:           display,
			WordNormalized: key,
			CreatedAt:      now,
		},
		Phonetics:  make([]domain.Phonetic, len(w.Phonetics)),
		Meanings:   make([]domain.Meaning, len(w.Meanings)),
		SourceURLs: dedupe(w.SourceURLs),
	}

	for i, p := range w.Phonetics {
		out.Phonetics[i] = domain.Phonetic{
			ID:       uuid.New(),
			TermID:   out.Term.ID,
			Text:     p.Text,
			AudioURL: p.AudioURL,
			Region:   p.Region,
			Position: i,
		}
	}

	for i, m := range w.Meanings {
		meaning := domain.Meaning{
			ID:           uuid.New(),
			TermID:       out.Term.ID,
			PartOfSpeech: m.PartOfSpeech,
			Position:     i,
			Definitions:  make([]domain.Definition, len(m.Definitions)),
		}
		for j, d := range m.Definitions {
			meaning.Definitions[j] = domain.Definition{
				ID:        uuid.New(),
				MeaningID: meaning.ID,
				Text:      d.Text,
				Example:   d.Example,
				Synonyms:  cloneStrings(d.Synonyms),
				Antonyms:  cloneStrings(d.Antonyms),
				ImageURL:  d.ImageURL,
				Emoji:     d.Emoji,
				Position:  j,
			}
		}
		out.Meanings[i] = meaning
	}

	return out
}

func flattenDefinitions(meanings []domain.Meaning) []domain.Definition {
	var defs []domain.Definition
	for _, m := range meanings {
		defs = append(defs, m.Definitions...)
	}
	return defs
}

// assembleWord builds the record for term from rows loaded separately.
// Rows whose parent id does not belong to term are dropped.
func assembleWord(
	term domain.Term,
	phonetics []domain.Phonetic,
	meanings []domain.Meaning,
	defs []domain.Definition,
	sources []string,
) *domain.Word {
	w := &domain.Word{
		Term:       term,
		Phonetics:  make([]domain.Phonetic, 0, len(phonetics)),
		Meanings:   make([]domain.Meaning, 0, len(meanings)),
		SourceURLs: append([]string{}, sources...),
	}

	for _, p := range phonetics {
		if p.TermID == term.ID {
			w.Phonetics = append(w.Phonetics, p)
		}
	}

	byMeaning := make(map[uuid.UUID][]domain.Definition, len(meanings))
	for _, d := range defs {
		byMeaning[d.MeaningID] = append(byMeaning[d.MeaningID], d)
	}

	for _, m := range meanings {
		if m.TermID != term.ID {
			continue
		}
		m.Definitions = byMeaning[m.ID]
		if m.Definitions == nil {
			m.Definitions = []domain.Definition{}
		}
		w.Meanings = append(w.Meanings, m)
	}

	return w
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
