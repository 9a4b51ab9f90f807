package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS save_slots (
	slot       TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps slots in the save_slots table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects with dsn and creates the table if missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create save_slots: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context, slot string) (string, error) {
	if err := ValidateSlot(slot); err != nil {
		return "", err
	}
	var data string
	err := s.pool.QueryRow(ctx, `SELECT data FROM save_slots WHERE slot = $1`, slot).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select slot %s: %w", slot, err)
	}
	return data, nil
}

func (s *PostgresStore) Save(ctx context.Context, slot, data string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO save_slots (slot, data, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (slot) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		slot, data)
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", slot, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, slot string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM save_slots WHERE slot = $1`, slot); err != nil {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
