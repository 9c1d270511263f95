package progression

import (
	"context"
	"time"

	"cryptopulse/internal/events"
	"cryptopulse/internal/model"
	"cryptopulse/internal/portfolio"
	"cryptopulse/internal/session"
	"cryptopulse/internal/store"
	"cryptopulse/internal/types"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Catalog is static. Unlocks reference entries by id and happen at most
// once per account; there is no reverse transition.
var Catalog = []Achievement{
	{ID: "first_trade", Title: "First Step", Description: "Open your first trade", Icon: "🚀"},
	{ID: "profit_1k", Title: "Market Shark", Description: "Earn $1,000 of net profit", Icon: "🦈"},
	{ID: "loss_survivor", Title: "Iron Nerves", Description: "Sit through a drawdown without closing", Icon: "🛡️"},
	{ID: "leverage_master", Title: "Risk Master", Description: "Open a trade at 20x leverage or more", Icon: "⚡"},
	{ID: "diversified", Title: "Investor", Description: "Hold crypto, forex and futures at the same time", Icon: "🌐"},
	{ID: "copy_cat", Title: "Mirror", Description: "Copy another trader's position", Icon: "👯"},
}

const (
	xpPerUnlock = 100
	xpPerLevel  = 200
)

// LevelForXP is the single source of truth for levels; the stored level
// field is a cache of this function and is recomputed on every award.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/xpPerLevel + 1
}

// LevelProgress reports how far into the current level the account is,
// as a percentage clamped to [0,100].
func LevelProgress(acc *model.Account) float64 {
	currentLevelXP := (acc.Level - 1) * xpPerLevel
	progress := float64(acc.XP-currentLevelXP) / float64(xpPerLevel) * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

func catalogByID(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

var profitThreshold = decimal.NewFromInt(1000)
var highLeverage = decimal.NewFromInt(20)

type predicate struct {
	id    string
	match func(acc *model.Account, prices map[string]decimal.Decimal) bool
}

// Evaluated in a fixed order so unlock sequences are deterministic.
var predicates = []predicate{
	{id: "first_trade", match: func(acc *model.Account, _ map[string]decimal.Decimal) bool {
		return len(acc.Positions) > 0
	}},
	{id: "profit_1k", match: func(acc *model.Account, prices map[string]decimal.Decimal) bool {
		return portfolio.Equity(acc, prices).Sub(acc.InitialCapital).GreaterThan(profitThreshold)
	}},
	{id: "leverage_master", match: func(acc *model.Account, _ map[string]decimal.Decimal) bool {
		for _, p := range acc.Positions {
			if p.Leverage.GreaterThanOrEqual(highLeverage) {
				return true
			}
		}
		return false
	}},
	{id: "diversified", match: func(acc *model.Account, _ map[string]decimal.Decimal) bool {
		held := map[types.AssetCategory]bool{}
		for _, p := range acc.Positions {
			held[p.Category] = true
		}
		return held[types.AssetCrypto] && held[types.AssetForex] && held[types.AssetFutures]
	}},
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

// CheckAchievements evaluates the predicate list against the account
// and awards anything newly matched: the unlock is stamped, XP grows by
// 100 per unlock and the level is rederived from XP. Calling again with
// unchanged state awards nothing.
func (s *Service) CheckAchievements(ctx context.Context, sess session.Session, prices map[string]decimal.Decimal) ([]Achievement, *model.Account, error) {
	acc, err := s.resolver.Account(ctx, sess)
	if err != nil {
		return nil, nil, err
	}

	var unlocked []Achievement
	now := time.Now().UTC()
	for _, p := range predicates {
		if acc.HasAchievement(p.id) || !p.match(acc, prices) {
			continue
		}
		entry, ok := catalogByID(p.id)
		if !ok {
			continue
		}
		unlocked = append(unlocked, entry)
		acc.Achievements = append(acc.Achievements, model.AchievementUnlock{ID: p.id, UnlockedAt: now})
	}
	if len(unlocked) == 0 {
		return nil, acc, nil
	}

	acc.XP += xpPerUnlock * len(unlocked)
	acc.Level = LevelForXP(acc.XP)
	if err := s.store.Put(ctx, acc); err != nil {
		return nil, nil, err
	}
	for _, a := range unlocked {
		s.log.Info().Str("account_id", acc.ID).Str("achievement", a.ID).Msg("achievement unlocked")
	}
	s.bus.Publish(events.Event{Type: events.TypeProfileUpdated, AccountID: acc.ID})
	return unlocked, acc, nil
}
