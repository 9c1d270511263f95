package session

import (
	"context"
	"errors"

	"cryptopulse/internal/model"
	"cryptopulse/internal/store"
)

// Session identifies the acting account. It is an explicit value passed
// into every core call rather than ambient process state, so tests can
// exercise several accounts side by side.
type Session struct {
	AccountID string
}

type Resolver struct {
	store store.Store
}

func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

func (r *Resolver) Account(ctx context.Context, sess Session) (*model.Account, error) {
	if sess.AccountID == "" {
		return nil, errors.New("session account id is required")
	}
	return r.store.Get(ctx, sess.AccountID)
}
