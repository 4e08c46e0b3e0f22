package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dtroode/connectflow/database"
	"github.com/dtroode/connectflow/internal/model"
)

var _ model.Gateway = (*Gateway)(nil)

// Gateway stores snapshots in a single key-value table. It runs over
// database/sql with the pgx driver so the same handle serves goose
// migrations and the query path.
type Gateway struct {
	db *sql.DB
}

// New opens a connection, verifies it and applies migrations.
func New(ctx context.Context, dsn string) (*Gateway, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Gateway{db: db}, nil
}

// NewWithDB wraps an existing handle; migrations are the caller's
// responsibility. Used in tests.
func NewWithDB(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	query := `SELECT data FROM snapshots WHERE key = $1`

	err := g.db.QueryRowContext(ctx, query, key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}

	return data, true, nil
}

func (g *Gateway) Save(ctx context.Context, key string, data []byte) error {
	query := `INSERT INTO snapshots (key, data) VALUES ($1, $2)
			  ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`

	if _, err := g.db.ExecContext(ctx, query, key, data); err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}

	return nil
}

func (g *Gateway) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM snapshots WHERE key = $1`

	if _, err := g.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}

	return nil
}

func (g *Gateway) Close() error {
	if g.db != nil {
		return g.db.Close()
	}
	return nil
}

// Ping verifies the connection is alive.
func (g *Gateway) Ping(ctx context.Context) error {
	if g.db == nil {
		return fmt.Errorf("database handle is nil")
	}
	return g.db.PingContext(ctx)
}
