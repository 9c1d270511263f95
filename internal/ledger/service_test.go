package ledger

import (
	"context"
	"testing"

	"cryptopulse/internal/events"
	"cryptopulse/internal/model"
	"cryptopulse/internal/session"
	"cryptopulse/internal/store"
	"cryptopulse/internal/types"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixture(t *testing.T) (*Service, session.Session, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	acc := &model.Account{
		ID:             "acc-1",
		Name:           "Trader",
		Email:          "trader@example.com",
		Balance:        decimal.NewFromInt(10000),
		InitialCapital: decimal.NewFromInt(10000),
		Positions:      []model.Position{},
		Transactions:   []model.Transaction{},
		Preferences: model.Preferences{
			Currency:      "USD",
			Language:      "RU",
			Notifications: model.Notifications{Email: true, Push: true},
		},
		Level: 1,
	}
	require.NoError(t, st.Put(context.Background(), acc))
	svc := NewService(st, session.NewResolver(st), events.NewBus(), zerolog.Nop())
	return svc, session.Session{AccountID: acc.ID}, st
}

func TestConvertToUSD(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		amount   string
		currency types.DepositCurrency
		want     string
	}{
		{"usd passes through", "250", types.CurrencyUSD, "250"},
		{"eur multiplies", "100", types.CurrencyEUR, "108"},
		{"rub divides", "9250", types.CurrencyRUB, "100"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ConvertToUSD(decimal.RequireFromString(tc.amount), tc.currency)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}

	_, err := ConvertToUSD(decimal.NewFromInt(5), types.DepositCurrency("GBP"))
	require.Error(t, err)
}

func TestDepositCreditsConvertedAmount(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t)

	acc, txn, err := svc.Deposit(context.Background(), sess, decimal.NewFromInt(9250), types.CurrencyRUB, "card")
	require.NoError(t, err)

	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(10100)), "balance %s", acc.Balance)
	assert.Equal(t, types.TransactionDeposit, txn.Kind)
	assert.Equal(t, types.TransactionCompleted, txn.Status)
	assert.Equal(t, "USD", txn.Currency)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(100)), "amount %s", txn.Amount)
	require.Len(t, acc.Transactions, 1)
	assert.Equal(t, txn.ID, acc.Transactions[0].ID)
}

func TestDepositOrdersMostRecentFirst(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t)

	_, first, err := svc.Deposit(context.Background(), sess, decimal.NewFromInt(10), types.CurrencyUSD, "card")
	require.NoError(t, err)
	acc, second, err := svc.Deposit(context.Background(), sess, decimal.NewFromInt(20), types.CurrencyUSD, "card")
	require.NoError(t, err)

	require.Len(t, acc.Transactions, 2)
	assert.Equal(t, second.ID, acc.Transactions[0].ID)
	assert.Equal(t, first.ID, acc.Transactions[1].ID)
}

func TestDepositRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t)

	_, _, err := svc.Deposit(context.Background(), sess, decimal.Zero, types.CurrencyUSD, "card")
	require.Error(t, err)
	_, _, err = svc.Deposit(context.Background(), sess, decimal.NewFromInt(-5), types.CurrencyUSD, "card")
	require.Error(t, err)
}

func TestResetRestoresInitialState(t *testing.T) {
	t.Parallel()
	svc, sess, st := newFixture(t)

	_, _, err := svc.Deposit(context.Background(), sess, decimal.NewFromInt(500), types.CurrencyUSD, "card")
	require.NoError(t, err)

	dirty, err := st.Get(context.Background(), sess.AccountID)
	require.NoError(t, err)
	dirty.Positions = []model.Position{{ID: "p1"}}
	dirty.Achievements = []model.AchievementUnlock{{ID: "first_trade"}}
	dirty.XP = 300
	dirty.Level = 2
	require.NoError(t, st.Put(context.Background(), dirty))

	acc, err := svc.Reset(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(acc.InitialCapital))
	assert.Empty(t, acc.Positions)
	assert.Empty(t, acc.Transactions)
	assert.Empty(t, acc.Achievements)
	assert.Equal(t, 1, acc.Level)
	assert.Equal(t, 0, acc.XP)
}

func ptr[T any](v T) *T { return &v }

func TestUpdateProfileMergesNotificationFlags(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t)

	acc, err := svc.UpdateProfile(context.Background(), sess, ProfileUpdate{
		Preferences: &PreferencesUpdate{
			Notifications: &NotificationsUpdate{PriceAlerts: ptr(true)},
		},
	})
	require.NoError(t, err)

	assert.True(t, acc.Preferences.Notifications.PriceAlerts)
	assert.True(t, acc.Preferences.Notifications.Email, "untouched flag must survive")
	assert.True(t, acc.Preferences.Notifications.Push, "untouched flag must survive")
}

func TestUpdateProfileNilFieldsLeaveValues(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t)

	acc, err := svc.UpdateProfile(context.Background(), sess, ProfileUpdate{
		Name: ptr("Renamed"),
		Preferences: &PreferencesUpdate{
			Currency: ptr("EUR"),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", acc.Name)
	assert.Equal(t, "EUR", acc.Preferences.Currency)
	assert.Equal(t, "RU", acc.Preferences.Language, "nil field must not reset")
	assert.False(t, acc.Preferences.TwoFactorEnabled)
}
