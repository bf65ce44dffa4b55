package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/owl-backend/internal/adapter/postgres"
	"github.com/heartmarshall/owl-backend/internal/adapter/postgres/testhelper"
)

// termExists checks whether a term row with the given ID exists in the database.
func termExists(t *testing.T, pool *pgxpool.Pool, termID uuid.UUID) bool {
	t.Helper()
	var exists bool
	err := pool.QueryRow(
		context.Background(),
		`SELECT EXISTS(SELECT 1 FROM terms WHERE id = $1)`,
		termID,
	).Scan(&exists)
	if err != nil {
		t.Fatalf("termExists query: %v", err)
	}
	return exists
}

func insertTerm(ctx context.Context, q postgres.Querier, id uuid.UUID) error {
	word := testhelper.UniqueWord("tx")
	_, err := q.Exec(ctx,
		`INSERT INTO terms (id, word, word_normalized) VALUES ($1, $2, $3)`,
		id, word, word,
	)
	return err
}

func TestRunInTx_Commit(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	termID := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		return insertTerm(ctx, postgres.QuerierFromCtx(ctx, pool), termID)
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !termExists(t, pool, termID) {
		t.Fatal("expected term to exist after committed transaction")
	}
}

func TestRunInTx_RollbackOnError(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	termID := uuid.New()
	sentinel := errors.New("business logic error")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if execErr := insertTerm(ctx, postgres.QuerierFromCtx(ctx, pool), termID); execErr != nil {
			t.Fatalf("insert inside tx failed: %v", execErr)
		}
		return sentinel
	})

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}

	if termExists(t, pool, termID) {
		t.Fatal("expected term NOT to exist after rolled-back transaction")
	}
}

func TestRunInTx_RollbackOnPanic(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	termID := uuid.New()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic to be re-raised")
		}
		if r != "test panic" {
			t.Fatalf("expected panic value %q, got %v", "test panic", r)
		}

		if termExists(t, pool, termID) {
			t.Fatal("expected term NOT to exist after panic-rolled-back transaction")
		}
	}()

	_ = tm.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := insertTerm(ctx, postgres.QuerierFromCtx(ctx, pool), termID); err != nil {
			t.Fatalf("insert inside tx failed: %v", err)
		}
		panic("test panic")
	})
}

func TestRunInTx_NestedJoinsOuter(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	innerID := uuid.New()
	sentinel := errors.New("outer failure")

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		innerErr := tm.RunInTx(ctx, func(ctx context.Context) error {
			return insertTerm(ctx, postgres.QuerierFromCtx(ctx, pool), innerID)
		})
		if innerErr != nil {
			return innerErr
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got: %v", err)
	}

	// The inner call joined the outer transaction, so the outer rollback undoes it.
	if termExists(t, pool, innerID) {
		t.Fatal("expected inner insert to be rolled back with the outer transaction")
	}
}

func TestRunInReadTx_RejectsWrites(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	termID := uuid.New()

	err := tm.RunInReadTx(context.Background(), func(ctx context.Context) error {
		return insertTerm(ctx, postgres.QuerierFromCtx(ctx, pool), termID)
	})
	if err == nil {
		t.Fatal("expected write inside read-only transaction to fail")
	}

	if termExists(t, pool, termID) {
		t.Fatal("expected no term after failed read-only transaction")
	}
}

func TestQuerierFromCtx_UsesTx(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	tm := postgres.NewTxManager(pool)

	termID := uuid.New()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		q := postgres.QuerierFromCtx(ctx, pool)
		if err := insertTerm(ctx, q, termID); err != nil {
			return err
		}

		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM terms WHERE id = $1)`, termID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			t.Fatal("expected term to be visible within the transaction")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunInTx returned error: %v", err)
	}

	if !termExists(t, pool, termID) {
		t.Fatal("expected term to exist after committed transaction")
	}
}
