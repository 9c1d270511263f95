package ledger

import (
	"context"
	"errors"
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

// Fixed conversion table into the accounting currency (USD). Static by
// design: deposits are simulated, not settled against live FX.
var (
	rubPerUSD = decimal.NewFromFloat(92.5)
	usdPerEUR = decimal.NewFromFloat(1.08)
)

// ConvertToUSD applies the fixed rate table.
func ConvertToUSD(amount decimal.Decimal, currency types.DepositCurrency) (decimal.Decimal, error) {
	switch currency {
	case types.CurrencyUSD:
		return amount, nil
	case types.CurrencyEUR:
		return amount.Mul(usdPerEUR), nil
	case types.CurrencyRUB:
		return amount.Div(rubPerUSD), nil
	default:
		return decimal.Zero, errors.New("unsupported deposit currency")
	}
}

type Service struct {
	store    store.Store
	resolver *session.Resolver
	bus      *events.Bus
	log      zerolog.Logger
}

func NewService(st store.Store, resolver *session.Resolver, bus *events.Bus, log zerolog.Logger) *Service {
	return &Service{store: st, resolver: resolver, bus: bus, log: log}
}

// Deposit converts the amount to USD, credits the balance and appends a
// COMPLETED transaction. Transactions are most-recent-first.
func (s *Service) Deposit(ctx context.Context, sess session.Session, amount decimal.Decimal, currency types.DepositCurrency, method string) (*model.Account, model.Transaction, error) {
	if !amount.GreaterThan(decimal.Zero) {
		return nil, model.Transaction{}, errors.New("amount must be positive")
	}
	converted, err := ConvertToUSD(amount, currency)
	if err != nil {
		return nil, model.Transaction{}, err
	}
	acc, err := s.resolver.Account(ctx, sess)
	if err != nil {
		return nil, model.Transaction{}, err
	}
	txn := model.Transaction{
		ID:        uuid.NewString(),
		Kind:      types.TransactionDeposit,
		Amount:    converted,
		Currency:  "USD",
		Method:    method,
		Status:    types.TransactionCompleted,
		CreatedAt: time.Now().UTC(),
	}
	acc.Balance = acc.Balance.Add(converted)
	acc.Transactions = append([]model.Transaction{txn}, acc.Transactions...)
	if err := s.store.Put(ctx, acc); err != nil {
		return nil, model.Transaction{}, err
	}
	s.log.Info().
		Str("account_id", acc.ID).
		Str("amount_usd", converted.StringFixed(2)).
		Str("source_currency", string(currency)).
		Msg("deposit credited")
	s.bus.Publish(events.Event{Type: events.TypeBalanceChanged, AccountID: acc.ID})
	return acc, txn, nil
}

// Reset restores the account to its initial capital and clears all
// positions, transactions and progression. Destructive; confirmation is
// the caller's concern.
func (s *Service) Reset(ctx context.Context, sess session.Session) (*model.Account, error) {
	acc, err := s.resolver.Account(ctx, sess)
	if err != nil {
		return nil, err
	}
	acc.Balance = acc.InitialCapital
	acc.Positions = []model.Position{}
	acc.Transactions = []model.Transaction{}
	acc.Achievements = []model.AchievementUnlock{}
	acc.Level = 1
	acc.XP = 0
	if err := s.store.Put(ctx, acc); err != nil {
		return nil, err
	}
	s.log.Info().Str("account_id", acc.ID).Msg("account reset")
	s.bus.Publish(events.Event{Type: events.TypeBalanceChanged, AccountID: acc.ID})
	return acc, nil
}

// Every updatable field is enumerated; nil means "leave unchanged".
// Notification flags merge one by one so a partial update never erases
// sibling flags.
type NotificationsUpdate struct {
	Email       *bool `json:"email"`
	Push        *bool `json:"push"`
	PriceAlerts *bool `json:"price_alerts"`
}

type PreferencesUpdate struct {
	Currency         *string              `json:"currency"`
	Language         *string              `json:"language"`
	Notifications    *NotificationsUpdate `json:"notifications"`
	TwoFactorEnabled *bool                `json:"two_factor_enabled"`
}

type ProfileUpdate struct {
	Name        *string            `json:"name"`
	Preferences *PreferencesUpdate `json:"preferences"`
}

func (s *Service) UpdateProfile(ctx context.Context, sess session.Session, update ProfileUpdate) (*model.Account, error) {
	acc, err := s.resolver.Account(ctx, sess)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		acc.Name = *update.Name
	}
	if p := update.Preferences; p != nil {
		if p.Currency != nil {
			acc.Preferences.Currency = *p.Currency
		}
		if p.Language != nil {
			acc.Preferences.Language = *p.Language
		}
		if p.TwoFactorEnabled != nil {
			acc.Preferences.TwoFactorEnabled = *p.TwoFactorEnabled
		}
		if n := p.Notifications; n != nil {
			if n.Email != nil {
				acc.Preferences.Notifications.Email = *n.Email
			}
			if n.Push != nil {
				acc.Preferences.Notifications.Push = *n.Push
			}
			if n.PriceAlerts != nil {
				acc.Preferences.Notifications.PriceAlerts = *n.PriceAlerts
			}
		}
	}
	if err := s.store.Put(ctx, acc); err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Type: events.TypeProfileUpdated, AccountID: acc.ID})
	return acc, nil
}
