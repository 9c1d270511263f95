package positions

import (
	"context"
	"fmt"
	"time"

	"cryptopulse/internal/events"
	"cryptopulse/internal/model"
	"cryptopulse/internal/session"
	"cryptopulse/internal/store"
	"cryptopulse/internal/types"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Leverage ceilings per asset class; the engine rejects anything above
// the cap for the asset being traded.
var maxLeverageByCategory = map[types.AssetCategory]decimal.Decimal{
	types.AssetCrypto:  decimal.NewFromInt(125),
	types.AssetForex:   decimal.NewFromInt(500),
	types.AssetFutures: decimal.NewFromInt(50),
}

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

type InsufficientFundsError struct {
	Shortfall decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: short $%s", e.Shortfall.StringFixed(2))
}

type Service struct {
	store    store.Store
	resolver *session.Resolver
	bus      *events.Bus
	log      zerolog.Logger

	// AllowNegativeBalance keeps the source behavior: a close whose loss
	// exceeds the refunded margin may drive balance below zero. With the
	// policy off the balance is clamped at zero instead.
	AllowNegativeBalance bool
}

func NewService(st store.Store, resolver *session.Resolver, bus *events.Bus, log zerolog.Logger) *Service {
	return &Service{store: st, resolver: resolver, bus: bus, log: log, AllowNegativeBalance: true}
}

type OpenRequest struct {
	AssetID      string
	Symbol       string
	Name         string
	Category     types.AssetCategory
	CurrentPrice decimal.Decimal
	Direction    types.PositionDirection
	Quantity     decimal.Decimal
	Leverage     decimal.Decimal
}

// Open debits the required margin and appends the position in one
// read-modify-write. Nothing is persisted when a guard rejects.
func (s *Service) Open(ctx context.Context, sess session.Session, req OpenRequest) (*model.Account, model.Position, error) {
	if req.Direction != types.PositionLong && req.Direction != types.PositionShort {
		return nil, model.Position{}, &ValidationError{Reason: "direction must be LONG or SHORT"}
	}
	if !req.Quantity.GreaterThan(decimal.Zero) {
		return nil, model.Position{}, &ValidationError{Reason: "quantity must be positive"}
	}
	if req.Leverage.LessThan(decimal.NewFromInt(1)) {
		return nil, model.Position{}, &ValidationError{Reason: "leverage must be at least 1"}
	}
	if !req.CurrentPrice.GreaterThan(decimal.Zero) {
		return nil, model.Position{}, &ValidationError{Reason: "asset price must be positive"}
	}
	if req.AssetID == "" {
		return nil, model.Position{}, &ValidationError{Reason: "asset id is required"}
	}
	if ceiling, ok := maxLeverageByCategory[req.Category]; ok && req.Leverage.GreaterThan(ceiling) {
		return nil, model.Position{}, &ValidationError{Reason: fmt.Sprintf("max leverage for %s is %sx", req.Category, ceiling.String())}
	}

	acc, err := s.resolver.Account(ctx, sess)
	if err != nil {
		return nil, model.Position{}, err
	}

	notional := req.CurrentPrice.Mul(req.Quantity)
	marginRequired := notional.Div(req.Leverage)
	if acc.Balance.LessThan(marginRequired) {
		return nil, model.Position{}, &InsufficientFundsError{Shortfall: marginRequired.Sub(acc.Balance)}
	}

	pos := model.Position{
		ID:         uuid.NewString(),
		AssetID:    req.AssetID,
		Symbol:     req.Symbol,
		Name:       req.Name,
		Category:   req.Category,
		Direction:  req.Direction,
		EntryPrice: req.CurrentPrice,
		Quantity:   req.Quantity,
		Leverage:   req.Leverage,
		OpenedAt:   time.Now().UTC(),
	}
	acc.Balance = acc.Balance.Sub(marginRequired)
	acc.Positions = append([]model.Position{pos}, acc.Positions...)
	if err := s.store.Put(ctx, acc); err != nil {
		return nil, model.Position{}, err
	}
	s.log.Info().
		Str("account_id", acc.ID).
		Str("symbol", pos.Symbol).
		Str("direction", string(pos.Direction)).
		Str("margin", marginRequired.StringFixed(2)).
		Msg("position opened")
	s.bus.Publish(events.Event{Type: events.TypeBalanceChanged, AccountID: acc.ID})
	return acc, pos, nil
}

// Close settles the position at the supplied price: the committed
// margin plus realized PnL flows back into balance and the position is
// removed. An unknown id is a no-op, which tolerates a double close
// from a stale UI.
func (s *Service) Close(ctx context.Context, sess session.Session, positionID string, currentPrice decimal.Decimal) (*model.Account, error) {
	if !currentPrice.GreaterThan(decimal.Zero) {
		return nil, &ValidationError{Reason: "current price must be positive"}
	}
	acc, err := s.resolver.Account(ctx, sess)
	if err != nil {
		return nil, err
	}
	idx, ok := acc.FindPosition(positionID)
	if !ok {
		return acc, nil
	}
	pos := acc.Positions[idx]
	pnl := pos.PnL(currentPrice)
	marginReturned := pos.Margin()

	acc.Balance = acc.Balance.Add(marginReturned).Add(pnl)
	if !s.AllowNegativeBalance && acc.Balance.IsNegative() {
		s.log.Warn().
			Str("account_id", acc.ID).
			Str("shortfall", acc.Balance.Neg().StringFixed(2)).
			Msg("close clamped at zero balance")
		acc.Balance = decimal.Zero
	}
	acc.Positions = append(acc.Positions[:idx], acc.Positions[idx+1:]...)
	if err := s.store.Put(ctx, acc); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("account_id", acc.ID).
		Str("symbol", pos.Symbol).
		Str("pnl", pnl.StringFixed(2)).
		Msg("position closed")
	s.bus.Publish(events.Event{Type: events.TypeBalanceChanged, AccountID: acc.ID})
	return acc, nil
}
