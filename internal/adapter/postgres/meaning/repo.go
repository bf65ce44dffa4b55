// Package meaning implements the Meaning repository using PostgreSQL.
// Definitions are not loaded here; see the definition package.
package meaning

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

var columns = []string{"id", "term_id", "part_of_speech", "position"}

// Repo provides meaning persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new meaning repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByParent returns the meanings of a term ordered by position.
func (r *Repo) GetByParent(ctx context.Context, termID uuid.UUID) ([]domain.Meaning, error) {
	return r.list(ctx, sq.Eq{"term_id": termID})
}

// All returns every stored meaning.
func (r *Repo) All(ctx context.Context) ([]domain.Meaning, error) {
	return r.list(ctx, nil)
}

// Add inserts a single meaning.
func (r *Repo) Add(ctx context.Context, m domain.Meaning) error {
	return r.AddAll(ctx, []domain.Meaning{m})
}

// AddAll inserts meanings with one multi-row statement.
func (r *Repo) AddAll(ctx context.Context, meanings []domain.Meaning) error {
	if len(meanings) == 0 {
		return nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	b := postgres.Builder.Insert("meanings").Columns(columns...)
	for _, m := range meanings {
		b = b.Values(m.ID, m.TermID, m.PartOfSpeech, m.Position)
	}

	if _, err := postgres.Exec(ctx, q, b); err != nil {
		return postgres.MapError(err, "meaning", meanings[0].TermID)
	}
	return nil
}

// Remove deletes a meaning and its definitions. Not an error if absent.
func (r *Repo) Remove(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := postgres.Exec(ctx, q, postgres.Builder.Delete("meanings").Where(sq.Eq{"id": id})); err != nil {
		return postgres.MapError(err, "meaning", id)
	}
	return nil
}

func (r *Repo) list(ctx context.Context, where sq.Sqlizer) ([]domain.Meaning, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder.Select(columns...).From("meanings").OrderBy("term_id", "position")
	if where != nil {
		b = b.Where(where)
	}

	rows, err := postgres.Query(ctx, q, b)
	if err != nil {
		return nil, fmt.Errorf("list meanings: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Meaning, error) {
		var m domain.Meaning
		err := row.Scan(&m.ID, &m.TermID, &m.PartOfSpeech, &m.Position)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("list meanings: %w", err)
	}

	if result == nil {
		result = []domain.Meaning{}
	}
	return result, nil
}
