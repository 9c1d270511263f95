package store

import (
	"context"
	"errors"

	"cryptopulse/internal/model"
)

var ErrNotFound = errors.New("account not found")

// ReadError and WriteError distinguish store failures from business
// rejections so callers can map them to the right status.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string { return "store read: " + e.Err.Error() }
func (e *ReadError) Unwrap() error { return e.Err }

type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "store write: " + e.Err.Error() }
func (e *WriteError) Unwrap() error { return e.Err }

// Store persists one Account record per id. Writes overwrite the whole
// record; there are no partial updates.
type Store interface {
	Get(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	Put(ctx context.Context, acc *model.Account) error
}
