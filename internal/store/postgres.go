package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"cryptopulse/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores each account as a single jsonb document, fully
// overwritten on every write. Email is projected into its own column
// for the uniqueness constraint and login lookup.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS accounts (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, id string) (*model.Account, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, "SELECT data FROM accounts WHERE id = $1", id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &ReadError{Err: err}
	}
	return decodeAccount(raw)
}

func (s *Postgres) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, "SELECT data FROM accounts WHERE email = $1", strings.ToLower(strings.TrimSpace(email))).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &ReadError{Err: err}
	}
	return decodeAccount(raw)
}

func (s *Postgres) Put(ctx context.Context, acc *model.Account) error {
	raw, err := json.Marshal(acc)
	if err != nil {
		return &WriteError{Err: err}
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO accounts (id, email, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id)
		DO UPDATE SET email = EXCLUDED.email, data = EXCLUDED.data, updated_at = NOW()
	`, acc.ID, strings.ToLower(strings.TrimSpace(acc.Email)), raw)
	if err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

func decodeAccount(raw []byte) (*model.Account, error) {
	var acc model.Account
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, &ReadError{Err: err}
	}
	return &acc, nil
}
