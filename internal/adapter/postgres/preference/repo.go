// Package preference implements the namespaced key/value preference store
// using the PostgreSQL preferences table.
package preference

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/owl-backend/internal/adapter/postgres"
)

// Repo stores preferences as (store, key) -> value rows.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new preference repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns the value stored under key in namespace store.
// Returns domain.ErrNotFound when the key is absent.
func (r *Repo) Get(ctx context.Context, store, key string) (string, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	query, args, err := postgres.Builder.Select("value").From("preferences").
		Where(sq.Eq{"store": store, "key": key}).ToSql()
	if err != nil {
		return "", fmt.Errorf("build get preference: %w", err)
	}

	var value string
	if err := q.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		return "", postgres.MapError(err, "preference", store+"/"+key)
	}
	return value, nil
}

// Set writes value under key, replacing any previous value.
func (r *Repo) Set(ctx context.Context, store, key, value string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := postgres.Exec(ctx, q, postgres.Builder.Insert("preferences").
		Columns("store", "key", "value").
		Values(store, key, value).
		Suffix("ON CONFLICT (store, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()"))
	if err != nil {
		return postgres.MapError(err, "preference", store+"/"+key)
	}
	return nil
}

// Delete removes key from the namespace. Not an error if it is absent.
func (r *Repo) Delete(ctx context.Context, store, key string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := postgres.Exec(ctx, q, postgres.Builder.Delete("preferences").
		Where(sq.Eq{"store": store, "key": key}))
	if err != nil {
		return postgres.MapError(err, "preference", store+"/"+key)
	}
	return nil
}

// All returns every key/value pair of the namespace.
// Returns an empty map (not nil) when the namespace is empty.
func (r *Repo) All(ctx context.Context, store string) (map[string]string, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := postgres.Query(ctx, q, postgres.Builder.Select("key", "value").
		From("preferences").Where(sq.Eq{"store": store}))
	if err != nil {
		return nil, fmt.Errorf("list preferences %s: %w", store, err)
	}
	defer rows.Close()

	result := make(map[string]string)
	var key, value string
	_, err = pgx.ForEachRow(rows, []any{&key, &value}, func() error {
		result[key] = value
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list preferences %s: %w", store, err)
	}
	return result, nil
}

// Clear removes every key of the namespace.
func (r *Repo) Clear(ctx context.Context, store string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := postgres.Exec(ctx, q, postgres.Builder.Delete("preferences").Where(sq.Eq{"store": store})); err != nil {
		return fmt.Errorf("clear preferences %s: %w", store, err)
	}
	return nil
}
