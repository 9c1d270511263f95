package positions

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

func newFixture(t *testing.T, balance string) (*Service, session.Session, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	acc := &model.Account{
		ID:             "acc-1",
		Email:          "trader@example.com",
		Balance:        decimal.RequireFromString(balance),
		InitialCapital: decimal.RequireFromString(balance),
		Positions:      []model.Position{},
		Transactions:   []model.Transaction{},
		Level:          1,
	}
	require.NoError(t, st.Put(context.Background(), acc))
	svc := NewService(st, session.NewResolver(st), events.NewBus(), zerolog.Nop())
	return svc, session.Session{AccountID: acc.ID}, st
}

func openReq(price, qty, lev string) OpenRequest {
	return OpenRequest{
		AssetID:      "bitcoin",
		Symbol:       "BTC",
		Name:         "Bitcoin",
		Category:     types.AssetCrypto,
		CurrentPrice: decimal.RequireFromString(price),
		Direction:    types.PositionLong,
		Quantity:     decimal.RequireFromString(qty),
		Leverage:     decimal.RequireFromString(lev),
	}
}

func TestOpenDebitsMarginAndPrependsPosition(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t, "10000")

	acc, pos, err := svc.Open(context.Background(), sess, openReq("100", "2", "4"))
	require.NoError(t, err)

	// margin = 100 * 2 / 4 = 50
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("9950")), "balance %s", acc.Balance)
	require.Len(t, acc.Positions, 1)
	assert.Equal(t, pos.ID, acc.Positions[0].ID)
	assert.True(t, pos.Margin().Equal(decimal.RequireFromString("50")))

	_, second, err := svc.Open(context.Background(), sess, openReq("200", "1", "2"))
	require.NoError(t, err)
	reloaded, err := svc.store.Get(context.Background(), sess.AccountID)
	require.NoError(t, err)
	require.Len(t, reloaded.Positions, 2)
	assert.Equal(t, second.ID, reloaded.Positions[0].ID, "newest position comes first")
}

func TestOpenValidation(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t, "10000")

	cases := []struct {
		name   string
		mutate func(*OpenRequest)
	}{
		{"bad direction", func(r *OpenRequest) { r.Direction = "SIDEWAYS" }},
		{"zero quantity", func(r *OpenRequest) { r.Quantity = decimal.Zero }},
		{"negative quantity", func(r *OpenRequest) { r.Quantity = decimal.NewFromInt(-1) }},
		{"leverage below one", func(r *OpenRequest) { r.Leverage = decimal.RequireFromString("0.5") }},
		{"zero price", func(r *OpenRequest) { r.CurrentPrice = decimal.Zero }},
		{"missing asset id", func(r *OpenRequest) { r.AssetID = "" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := openReq("100", "1", "2")
			tc.mutate(&req)
			_, _, err := svc.Open(context.Background(), sess, req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestOpenLeverageCeilingPerCategory(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t, "1000000")

	cases := []struct {
		category types.AssetCategory
		leverage string
		wantErr  bool
	}{
		{types.AssetCrypto, "125", false},
		{types.AssetCrypto, "126", true},
		{types.AssetForex, "500", false},
		{types.AssetForex, "501", true},
		{types.AssetFutures, "50", false},
		{types.AssetFutures, "51", true},
	}
	for _, tc := range cases {
		req := openReq("100", "1", tc.leverage)
		req.Category = tc.category
		_, _, err := svc.Open(context.Background(), sess, req)
		if tc.wantErr {
			var verr *ValidationError
			require.ErrorAs(t, err, &verr, "%s at %sx", tc.category, tc.leverage)
		} else {
			require.NoError(t, err, "%s at %sx", tc.category, tc.leverage)
		}
	}
}

func TestOpenInsufficientFundsLeavesAccountUntouched(t *testing.T) {
	t.Parallel()
	svc, sess, st := newFixture(t, "40")

	// margin required = 100 * 2 / 4 = 50, balance 40, short 10
	_, _, err := svc.Open(context.Background(), sess, openReq("100", "2", "4"))
	var ferr *InsufficientFundsError
	require.ErrorAs(t, err, &ferr)
	assert.True(t, ferr.Shortfall.Equal(decimal.RequireFromString("10")), "shortfall %s", ferr.Shortfall)

	acc, err := st.Get(context.Background(), sess.AccountID)
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("40")))
	assert.Empty(t, acc.Positions)
}

func TestCloseReturnsMarginPlusPnL(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t, "10000")

	_, pos, err := svc.Open(context.Background(), sess, openReq("100", "2", "4"))
	require.NoError(t, err)

	// margin 50 committed, balance 9950; close at 110: pnl = (110-100)*2 = 20
	acc, err := svc.Close(context.Background(), sess, pos.ID, decimal.RequireFromString("110"))
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("10020")), "balance %s", acc.Balance)
	assert.Empty(t, acc.Positions)
}

func TestCloseShortProfitsWhenPriceFalls(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t, "10000")

	req := openReq("100", "2", "4")
	req.Direction = types.PositionShort
	_, pos, err := svc.Open(context.Background(), sess, req)
	require.NoError(t, err)

	// pnl = (100-90)*2 = 20
	acc, err := svc.Close(context.Background(), sess, pos.ID, decimal.RequireFromString("90"))
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("10020")), "balance %s", acc.Balance)
}

func TestCloseUnknownPositionIsNoOp(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t, "10000")

	_, pos, err := svc.Open(context.Background(), sess, openReq("100", "2", "4"))
	require.NoError(t, err)
	first, err := svc.Close(context.Background(), sess, pos.ID, decimal.RequireFromString("110"))
	require.NoError(t, err)

	again, err := svc.Close(context.Background(), sess, pos.ID, decimal.RequireFromString("110"))
	require.NoError(t, err)
	assert.True(t, again.Balance.Equal(first.Balance), "double close must not settle twice")
}

func TestCloseRejectsNonPositivePrice(t *testing.T) {
	t.Parallel()
	svc, sess, _ := newFixture(t, "10000")

	_, err := svc.Close(context.Background(), sess, "whatever", decimal.Zero)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCloseNegativeBalancePolicy(t *testing.T) {
	t.Parallel()

	// loss 80 exceeds the 50 margin refund on a near-empty balance
	open := func(t *testing.T, svc *Service, sess session.Session) model.Position {
		t.Helper()
		_, pos, err := svc.Open(context.Background(), sess, openReq("100", "2", "4"))
		require.NoError(t, err)
		return pos
	}

	t.Run("allowed by default", func(t *testing.T) {
		t.Parallel()
		svc, sess, _ := newFixture(t, "60")
		pos := open(t, svc, sess)
		acc, err := svc.Close(context.Background(), sess, pos.ID, decimal.RequireFromString("60"))
		require.NoError(t, err)
		// 10 + 50 - 80 = -20
		assert.True(t, acc.Balance.Equal(decimal.RequireFromString("-20")), "balance %s", acc.Balance)
	})

	t.Run("clamped when disabled", func(t *testing.T) {
		t.Parallel()
		svc, sess, _ := newFixture(t, "60")
		svc.AllowNegativeBalance = false
		pos := open(t, svc, sess)
		acc, err := svc.Close(context.Background(), sess, pos.ID, decimal.RequireFromString("60"))
		require.NoError(t, err)
		assert.True(t, acc.Balance.IsZero(), "balance %s", acc.Balance)
	})
}

func TestOpenPublishesBalanceChanged(t *testing.T) {
	t.Parallel()
	st := store.NewMemory()
	acc := &model.Account{ID: "acc-evt", Balance: decimal.NewFromInt(1000), Level: 1}
	require.NoError(t, st.Put(context.Background(), acc))
	bus := events.NewBus()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)
	svc := NewService(st, session.NewResolver(st), bus, zerolog.Nop())

	_, _, err := svc.Open(context.Background(), session.Session{AccountID: acc.ID}, openReq("100", "1", "2"))
	require.NoError(t, err)

	evt := <-sub
	assert.Equal(t, events.TypeBalanceChanged, evt.Type)
	assert.Equal(t, acc.ID, evt.AccountID)
}
