package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=smartinvest sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// EnsureSchema creates the tables this adapter needs when they do not
// exist yet. Balances and prices are stored as NUMERIC; the ledger is
// append-only and keyed by insertion order.
func (db *DB) EnsureSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		user_id   UUID PRIMARY KEY,
		name      TEXT NOT NULL,
		is_public BOOLEAN NOT NULL DEFAULT FALSE,
		balance   NUMERIC(20, 8) NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS holdings (
		user_id    UUID NOT NULL REFERENCES accounts(user_id),
		symbol     TEXT NOT NULL,
		quantity   NUMERIC(20, 8) NOT NULL,
		avg_price  NUMERIC(20, 8) NOT NULL,
		total_cost NUMERIC(20, 8) NOT NULL,
		PRIMARY KEY (user_id, symbol)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id          BIGSERIAL PRIMARY KEY,
		user_id     UUID NOT NULL REFERENCES accounts(user_id),
		type        TEXT NOT NULL,
		symbol      TEXT,
		quantity    NUMERIC(20, 8),
		price       NUMERIC(20, 8),
		commission  NUMERIC(20, 8),
		amount      NUMERIC(20, 8),
		description TEXT,
		occurred_at TIMESTAMPTZ NOT NULL
	);
	`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
