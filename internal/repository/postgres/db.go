package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup so a fresh database is usable without
// separate migration tooling.
const schema = `
CREATE TABLE IF NOT EXISTS workouts (
    id           BIGSERIAL PRIMARY KEY,
    title        TEXT NOT NULL,
    workout_date DATE NOT NULL,
    category     TEXT NOT NULL,
    duration_min INTEGER NOT NULL CHECK (duration_min > 0),
    notes        TEXT,
    image_url    TEXT,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Connect builds a pgx connection pool and verifies connectivity with a
// ping. Callers treat any error here as fatal.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	log.Println("Postgres connection pool established.")
	return pool, nil
}

// EnsureSchema creates the workouts table if it does not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensuring workouts schema: %w", err)
	}
	return nil
}
