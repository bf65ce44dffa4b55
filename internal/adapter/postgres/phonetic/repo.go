// Package phonetic implements the Phonetic repository using PostgreSQL.
package phonetic

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/owl-backend/internal/adapter/postgres"
	"github.com/heartmarshall/owl-backend/internal/domain"
)

var columns = []string{"id", "term_id", "text", "audio_url", "region", "position"}

// Repo provides phonetic persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new phonetic repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByParent returns the phonetics of a term ordered by position.
// Returns an empty slice (not nil) when the term has none.
func (r *Repo) GetByParent(ctx context.Context, termID uuid.UUID) ([]domain.Phonetic, error) {
	return r.list(ctx, sq.Eq{"term_id": termID})
}

// All returns every stored phonetic.
func (r *Repo) All(ctx context.Context) ([]domain.Phonetic, error) {
	return r.list(ctx, nil)
}

// Add inserts a single phonetic.
func (r *Repo) Add(ctx context.Context, p domain.Phonetic) error {
	return r.AddAll(ctx, []domain.Phonetic{p})
}

// AddAll inserts phonetics with one multi-row statement, so either every row
// is written or none is.
func (r *Repo) AddAll(ctx context.Context, phonetics []domain.Phonetic) error {
	if len(phonetics) == 0 {
		return nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	b := postgres.Builder.Insert("phonetics").Columns(columns...)
	for _, p := range phonetics {
		b = b.Values(p.ID, p.TermID, p.Text, p.AudioURL, p.Region, p.Position)
	}

	if _, err := postgres.Exec(ctx, q, b); err != nil {
		return postgres.MapError(err, "phonetic", phonetics[0].TermID)
	}
	return nil
}

// Remove deletes a phonetic. Not an error if it does not exist.
func (r *Repo) Remove(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := postgres.Exec(ctx, q, postgres.Builder.Delete("phonetics").Where(sq.Eq{"id": id})); err != nil {
		return postgres.MapError(err, "phonetic", id)
	}
	return nil
}

func (r *Repo) list(ctx context.Context, where sq.Sqlizer) ([]domain.Phonetic, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder.Select(columns...).From("phonetics").OrderBy("term_id", "position")
	if where != nil {
		b = b.Where(where)
	}

	rows, err := postgres.Query(ctx, q, b)
	if err != nil {
		return nil, fmt.Errorf("list phonetics: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Phonetic, error) {
		var p domain.Phonetic
		err := row.Scan(&p.ID, &p.TermID, &p.Text, &p.AudioURL, &p.Region, &p.Position)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("list phonetics: %w", err)
	}

	if result == nil {
		result = []domain.Phonetic{}
	}
	return result, nil
}
