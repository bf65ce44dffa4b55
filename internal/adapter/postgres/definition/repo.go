// Package definition implements the Definition repository using PostgreSQL.
package definition

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

var columns = []string{"id", "meaning_id", "text", "example", "synonyms", "antonyms", "image_url", "emoji", "position"}

// Repo provides definition persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new definition repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByParent returns the definitions of a meaning ordered by position.
func (r *Repo) GetByParent(ctx context.Context, meaningID uuid.UUID) ([]domain.Definition, error) {
	return r.list(ctx, sq.Eq{"meaning_id": meaningID})
}

// GetByParents returns the definitions of several meanings in one query,
// ordered by meaning then position. Callers group by MeaningID.
func (r *Repo) GetByParents(ctx context.Context, meaningIDs []uuid.UUID) ([]domain.Definition, error) {
	if len(meaningIDs) == 0 {
		return []domain.Definition{}, nil
	}
	return r.list(ctx, sq.Expr("meaning_id = ANY(?::uuid[])", meaningIDs))
}

// All returns every stored definition.
func (r *Repo) All(ctx context.Context) ([]domain.Definition, error) {
	return r.list(ctx, nil)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Add inserts a single definition.
func (r *Repo) Add(ctx context.Context, d domain.Definition) error {
	return r.AddAll(ctx, []domain.Definition{d})
}

// AddAll inserts definitions with one multi-row statement. Nil synonym and
// antonym slices are stored as empty arrays.
func (r *Repo) AddAll(ctx context.Context, defs []domain.Definition) error {
	if len(defs) == 0 {
		return nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	b := postgres.Builder.Insert("definitions").Columns(columns...)
	for _, d := range defs {
		b = b.Values(d.ID, d.MeaningID, d.Text, d.Example, nonNil(d.Synonyms), nonNil(d.Antonyms), d.ImageURL, d.Emoji, d.Position)
	}

	if _, err := postgres.Exec(ctx, q, b); err != nil {
		return postgres.MapError(err, "definition", defs[0].MeaningID)
	}
	return nil
}

// Remove deletes a definition. Not an error if it does not exist.
func (r *Repo) Remove(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := postgres.Exec(ctx, q, postgres.Builder.Delete("definitions").Where(sq.Eq{"id": id})); err != nil {
		return postgres.MapError(err, "definition", id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (r *Repo) list(ctx context.Context, where sq.Sqlizer) ([]domain.Definition, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	b := postgres.Builder.Select(columns...).From("definitions").OrderBy("meaning_id", "position")
	if where != nil {
		b = b.Where(where)
	}

	rows, err := postgres.Query(ctx, q, b)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Definition, error) {
		var d domain.Definition
		err := row.Scan(&d.ID, &d.MeaningID, &d.Text, &d.Example, &d.Synonyms, &d.Antonyms, &d.ImageURL, &d.Emoji, &d.Position)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}

	if result == nil {
		result = []domain.Definition{}
	}
	return result, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
