package model

import (
	"time"

	"cryptopulse/internal/types"

	"github.com/shopspring/decimal"
)

// Position is an open leveraged exposure. Entry price, quantity and
// leverage are fixed at open time; the current price is always supplied
// externally at evaluation time.
type Position struct {
	ID         string                  `json:"id"`
	AssetID    string                  `json:"asset_id"`
	Symbol     string                  `json:"symbol"`
	Name       string                  `json:"name"`
	Category   types.AssetCategory     `json:"category"`
	Direction  types.PositionDirection `json:"direction"`
	EntryPrice decimal.Decimal         `json:"entry_price"`
	Quantity   decimal.Decimal         `json:"quantity"`
	Leverage   decimal.Decimal         `json:"leverage"`
	OpenedAt   time.Time               `json:"opened_at"`
}

// Margin is the cash committed to the position: entry * qty / leverage.
// Recomputed, never stored.
func (p Position) Margin() decimal.Decimal {
	return p.EntryPrice.Mul(p.Quantity).Div(p.Leverage)
}

// PnL is linear in quantity; leverage only sized the committed margin.
func (p Position) PnL(currentPrice decimal.Decimal) decimal.Decimal {
	if p.Direction == types.PositionShort {
		return p.EntryPrice.Sub(currentPrice).Mul(p.Quantity)
	}
	return currentPrice.Sub(p.EntryPrice).Mul(p.Quantity)
}

// Transaction is an immutable audit record, amounts already converted
// to the accounting currency.
type Transaction struct {
	ID        string                  `json:"id"`
	Kind      types.TransactionKind   `json:"kind"`
	Amount    decimal.Decimal         `json:"amount"`
	Currency  string                  `json:"currency"`
	Method    string                  `json:"method,omitempty"`
	Status    types.TransactionStatus `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
}

type Notifications struct {
	Email       bool `json:"email"`
	Push        bool `json:"push"`
	PriceAlerts bool `json:"price_alerts"`
}

type Preferences struct {
	Currency         string        `json:"currency"`
	Language         string        `json:"language"`
	Notifications    Notifications `json:"notifications"`
	TwoFactorEnabled bool          `json:"two_factor_enabled"`
}

type AchievementUnlock struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// Account is the root aggregate, one record per user in the store.
type Account struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	PasswordHash   string              `json:"password_hash,omitempty"`
	Balance        decimal.Decimal     `json:"balance"`
	InitialCapital decimal.Decimal     `json:"initial_capital"`
	Positions      []Position          `json:"positions"`
	Transactions   []Transaction       `json:"transactions"`
	Preferences    Preferences         `json:"preferences"`
	IsPro          bool                `json:"is_pro"`
	MemberSince    time.Time           `json:"member_since"`
	Level          int                 `json:"level"`
	XP             int                 `json:"xp"`
	Achievements   []AchievementUnlock `json:"achievements"`
}

func (a *Account) FindPosition(positionID string) (int, bool) {
	for i, p := range a.Positions {
		if p.ID == positionID {
			return i, true
		}
	}
	return -1, false
}

func (a *Account) HasAchievement(id string) bool {
	for _, u := range a.Achievements {
		if u.ID == id {
			return true
		}
	}
	return false
}

// CommittedMargin sums the margin held by all open positions.
func (a *Account) CommittedMargin() decimal.Decimal {
	total := decimal.Zero
	for _, p := range a.Positions {
		total = total.Add(p.Margin())
	}
	return total
}

// Clone returns a deep copy so store reads hand out consistent
// snapshots that callers may mutate freely.
func (a *Account) Clone() *Account {
	cp := *a
	cp.Positions = append([]Position(nil), a.Positions...)
	cp.Transactions = append([]Transaction(nil), a.Transactions...)
	cp.Achievements = append([]AchievementUnlock(nil), a.Achievements...)
	return &cp
}

// Redacted strips credentials for API responses.
func (a *Account) Redacted() *Account {
	cp := a.Clone()
	cp.PasswordHash = ""
	return cp
}
