package store

import (
	"context"
	"testing"

	"cryptopulse/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetNotFound(t *testing.T) {
	t.Parallel()
	m := NewMemory()

	_, err := m.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.GetByEmail(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPutGetRoundTrip(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	acc := &model.Account{
		ID:      "acc-1",
		Email:   "Trader@Example.com",
		Balance: decimal.NewFromInt(500),
		Positions: []model.Position{
			{ID: "p1", Symbol: "BTC"},
		},
	}
	require.NoError(t, m.Put(context.Background(), acc))

	got, err := m.Get(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)
	require.Len(t, got.Positions, 1)

	byEmail, err := m.GetByEmail(context.Background(), "trader@example.com")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, byEmail.ID, "email lookup is case-insensitive")
}

func TestMemoryHandsOutIsolatedCopies(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	acc := &model.Account{
		ID:        "acc-1",
		Balance:   decimal.NewFromInt(500),
		Positions: []model.Position{{ID: "p1"}},
	}
	require.NoError(t, m.Put(context.Background(), acc))

	// mutating the original after Put must not leak into the store
	acc.Balance = decimal.NewFromInt(0)
	acc.Positions[0].ID = "tampered"

	got, err := m.Get(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "p1", got.Positions[0].ID)

	// mutating a read snapshot must not affect later reads
	got.Positions = append(got.Positions, model.Position{ID: "p2"})
	again, err := m.Get(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Len(t, again.Positions, 1)
}

func TestMemoryPutOverwrites(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	require.NoError(t, m.Put(context.Background(), &model.Account{ID: "acc-1", Name: "Before"}))
	require.NoError(t, m.Put(context.Background(), &model.Account{ID: "acc-1", Name: "After"}))

	got, err := m.Get(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)
}
