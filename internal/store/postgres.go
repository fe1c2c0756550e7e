package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trivia-live/internal/game"
)

// snapshotRowID pins the singleton row: exactly one session exists.
const snapshotRowID = 1

// PostgresStore keeps the snapshot as a single JSONB row.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Load reads the snapshot row; (nil, nil) when none exists yet.
func (s *PostgresStore) Load(ctx context.Context) (*game.SessionSnapshot, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT state FROM session_snapshots WHERE id = $1`, snapshotRowID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select snapshot: %w", err)
	}

	var snap game.SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}

// Save upserts the snapshot row.
func (s *PostgresStore) Save(ctx context.Context, snap game.SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO session_snapshots (id, state, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (id) DO UPDATE SET state = excluded.state, updated_at = now()`,
		snapshotRowID, data,
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}
