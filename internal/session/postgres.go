package session

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createSessionTable = `
CREATE TABLE IF NOT EXISTS client_session (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBackend stores each session key as a row of client_session.
type PostgresBackend struct {
	db *pgxpool.Pool
}

func NewPostgresBackend(db *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the session table when missing.
func (p *PostgresBackend) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createSessionTable); err != nil {
		return fmt.Errorf("failed to create session table: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Load(ctx context.Context) (Snapshot, error) {
	rows, err := p.db.Query(ctx, `SELECT key, value FROM client_session WHERE key = ANY($1)`, []string{KeyAuthToken, KeyUser})
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query session: %w", err)
	}
	defer rows.Close()

	var snap Snapshot
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Snapshot{}, fmt.Errorf("failed to scan session row: %w", err)
		}
		switch key {
		case KeyAuthToken:
			snap.Token = []byte(value)
		case KeyUser:
			snap.User = []byte(value)
		}
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("error iterating session rows: %w", err)
	}
	return snap, nil
}

func (p *PostgresBackend) Save(ctx context.Context, snap Snapshot) error {
	return pgx.BeginFunc(ctx, p.db, func(tx pgx.Tx) error {
		for key, value := range map[string][]byte{KeyAuthToken: snap.Token, KeyUser: snap.User} {
			if len(value) == 0 {
				if _, err := tx.Exec(ctx, `DELETE FROM client_session WHERE key = $1`, key); err != nil {
					return fmt.Errorf("failed to delete session key %s: %w", key, err)
				}
				continue
			}
			upsert := `
			INSERT INTO client_session (key, value, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
			`
			if _, err := tx.Exec(ctx, upsert, key, string(value)); err != nil {
				return fmt.Errorf("failed to write session key %s: %w", key, err)
			}
		}
		return nil
	})
}

func (p *PostgresBackend) Clear(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM client_session WHERE key = ANY($1)`, []string{KeyAuthToken, KeyUser}); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
