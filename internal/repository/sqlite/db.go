package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS workouts (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    title        TEXT NOT NULL,
    workout_date TEXT NOT NULL,
    category     TEXT NOT NULL,
    duration_min INTEGER NOT NULL CHECK (duration_min > 0),
    notes        TEXT,
    image_url    TEXT,
    created_at   TEXT NOT NULL,
    updated_at   TEXT NOT NULL
)`

// Open opens (or creates) the SQLite database at the given DSN and
// ensures the workouts table exists. Use ":memory:" for an ephemeral
// database in tests.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent request handling.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensuring workouts schema: %w", err)
	}

	log.Printf("SQLite database ready at %s", dsn)
	return db, nil
}
