// Package redis implements the namespaced preference store on Redis hashes
// (one hash per namespace, keys and values as hash fields) and a pub/sub
// change bus.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/heartmarshall/owl-backend/internal/domain"
)

const defaultPrefix = "owl:prefs:"

// Store is a preference store backed by Redis.
type Store struct {
	rdb    *goredis.Client
	prefix string
}

// Connect parses url, creates a client and verifies connectivity.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// NewStore wraps rdb. An empty prefix selects the default key prefix.
func NewStore(rdb *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(store string) string { return s.prefix + store }

// Get returns the value stored under key. Returns domain.ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, store, key string) (string, error) {
	val, err := s.rdb.HGet(ctx, s.key(store), key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", fmt.Errorf("preference %s/%s: %w", store, key, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("preference %s/%s: %w", store, key, err)
	}
	return val, nil
}

// Set writes value under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, store, key, value string) error {
	if err := s.rdb.HSet(ctx, s.key(store), key, value).Err(); err != nil {
		return fmt.Errorf("preference %s/%s: %w", store, key, err)
	}
	return nil
}

// Delete removes key. Not an error if it is absent.
func (s *Store) Delete(ctx context.Context, store, key string) error {
	if err := s.rdb.HDel(ctx, s.key(store), key).Err(); err != nil {
		return fmt.Errorf("preference %s/%s: %w", store, key, err)
	}
	return nil
}

// All returns every key/value pair of the namespace.
func (s *Store) All(ctx context.Context, store string) (map[string]string, error) {
	m, err := s.rdb.HGetAll(ctx, s.key(store)).Result()
	if err != nil {
		return nil, fmt.Errorf("list preferences %s: %w", store, err)
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// Clear removes the whole namespace.
func (s *Store) Clear(ctx context.Context, store string) error {
	if err := s.rdb.Del(ctx, s.key(store)).Err(); err != nil {
		return fmt.Errorf("clear preferences %s: %w", store, err)
	}
	return nil
}
