// Package term implements the Term repository using PostgreSQL.
// A term is the root of a cached word; its phonetics, meanings and source
// URLs are removed with it through ON DELETE CASCADE.
package term

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/owl-backend/internal/adapter/postgres"
	"github.com/heartmarshall/owl-backend/internal/domain"
)

var columns = []string{"id", "word", "word_normalized", "created_at"}

// Repo provides term persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new term repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a term by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Term, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := postgres.Builder.Select(columns...).From("terms").
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get term: %w", err)
	}

	t, err := scanTerm(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "term", id)
	}
	return &t, nil
}

// GetByWord returns the term whose normalized form equals NormalizeWord(word).
// Returns domain.ErrNotFound when the word is not cached.
func (r *Repo) GetByWord(ctx context.Context, word string) (*domain.Term, error) {
	normalized := domain.NormalizeWord(word)
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := postgres.Builder.Select(columns...).From("terms").
		Where(sq.Eq{"word_normalized": normalized}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get term by word: %w", err)
	}

	t, err := scanTerm(q.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, postgres.MapError(err, "term", normalized)
	}
	return &t, nil
}

// All returns every cached term ordered by normalized word.
func (r *Repo) All(ctx context.Context) ([]domain.Term, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := postgres.Query(ctx, q,
		postgres.Builder.Select(columns...).From("terms").OrderBy("word_normalized"))
	if err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}
	defer rows.Close()

	var result []domain.Term
	for rows.Next() {
		t, scanErr := scanTerm(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("list terms: %w", scanErr)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list terms: %w", err)
	}

	if result == nil {
		result = []domain.Term{}
	}
	return result, nil
}

// Words returns the display form of every cached term.
// Returns an empty slice (not nil) when the cache is empty.
func (r *Repo) Words(ctx context.Context) ([]string, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := postgres.Query(ctx, q,
		postgres.Builder.Select("word").From("terms").OrderBy("word_normalized"))
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}

	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}

// SourceURLs returns the source URLs stored for a term in insertion order.
func (r *Repo) SourceURLs(ctx context.Context, termID uuid.UUID) ([]string, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := postgres.Query(ctx, q,
		postgres.Builder.Select("url").From("term_sources").
			Where(sq.Eq{"term_id": termID}).OrderBy("position"))
	if err != nil {
		return nil, fmt.Errorf("get term sources: %w", err)
	}

	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("get term sources: %w", err)
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Add inserts a term under NormalizeWord(t.WordNormalized), falling back to
// the normalized display form when no key is given. A duplicate key yields
// domain.ErrAlreadyExists.
func (r *Repo) Add(ctx context.Context, t domain.Term) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	key := domain.NormalizeWord(t.WordNormalized)
	if key == "" {
		key = domain.NormalizeWord(t.Word)
	}

	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := postgres.Exec(ctx, q, postgres.Builder.Insert("terms").
		Columns(columns...).
		Values(t.ID, t.Word, key, createdAt))
	if err != nil {
		return postgres.MapError(err, "term", t.ID)
	}
	return nil
}

// AddSources stores the source URLs of a term in a single batch.
// Duplicate URLs keep their first position.
func (r *Repo) AddSources(ctx context.Context, termID uuid.UUID, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	b := postgres.Builder.Insert("term_sources").Columns("term_id", "url", "position")
	for i, u := range urls {
		b = b.Values(termID, u, i)
	}

	if _, err := postgres.Exec(ctx, q, b.Suffix("ON CONFLICT (term_id, url) DO NOTHING")); err != nil {
		return postgres.MapError(err, "term_source", termID)
	}
	return nil
}

// LockWord takes a transaction-scoped advisory lock on NormalizeWord(word).
// Outside a transaction the lock is released as soon as the statement ends.
func (r *Repo) LockWord(ctx context.Context, word string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, domain.NormalizeWord(word)); err != nil {
		return fmt.Errorf("lock word: %w", err)
	}
	return nil
}

// Remove deletes a term and, through the cascade, all of its children.
// Not an error if the term does not exist.
func (r *Repo) Remove(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := postgres.Exec(ctx, q, postgres.Builder.Delete("terms").Where(sq.Eq{"id": id})); err != nil {
		return postgres.MapError(err, "term", id)
	}
	return nil
}

// RemoveByWord deletes the term stored under NormalizeWord(word) and reports
// whether a row was removed.
func (r *Repo) RemoveByWord(ctx context.Context, word string) (bool, error) {
	normalized := domain.NormalizeWord(word)
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := postgres.Exec(ctx, q,
		postgres.Builder.Delete("terms").Where(sq.Eq{"word_normalized": normalized}))
	if err != nil {
		return false, postgres.MapError(err, "term", normalized)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteOlderThan removes terms cached before threshold and returns how many
// were deleted.
func (r *Repo) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := postgres.Exec(ctx, q,
		postgres.Builder.Delete("terms").Where(sq.Lt{"created_at": threshold}))
	if err != nil {
		return 0, fmt.Errorf("delete terms older than %s: %w", threshold.Format(time.RFC3339), err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...any) error
}

func scanTerm(row scannable) (domain.Term, error) {
	var t domain.Term
	if err := row.Scan(&t.ID, &t.Word, &t.WordNormalized, &t.CreatedAt); err != nil {
		return domain.Term{}, err
	}
	return t, nil
}
