package portfolio

import (
	"math/rand"
	"sort"
	"time"

	"cryptopulse/internal/model"

	"github.com/shopspring/decimal"
)

// Volatility drives the synthetic performance walk. Exported so a
// reimplementation (and the tests) can pin the exact constant.
const Volatility = 0.05

const cashColor = "#10b981"

var palette = []string{"#0ea5e9", "#8b5cf6", "#10b981", "#f59e0b", "#ef4444", "#ec4899", "#6366f1"}

func priceFor(pos model.Position, prices map[string]decimal.Decimal) decimal.Decimal {
	if p, ok := prices[pos.AssetID]; ok && p.GreaterThan(decimal.Zero) {
		return p
	}
	// Missing quote means "no movement", never an error.
	return pos.EntryPrice
}

// Equity marks the whole account to market: free cash plus committed
// margin plus unrealized PnL. Closing every position at the same prices
// drives balance to exactly this value.
func Equity(acc *model.Account, prices map[string]decimal.Decimal) decimal.Decimal {
	equity := acc.Balance
	for _, pos := range acc.Positions {
		equity = equity.Add(pos.Margin()).Add(pos.PnL(priceFor(pos, prices)))
	}
	return equity
}

// UnrealizedPnL sums open-position PnL against the supplied prices.
func UnrealizedPnL(acc *model.Account, prices map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, pos := range acc.Positions {
		total = total.Add(pos.PnL(priceFor(pos, prices)))
	}
	return total
}

type AssetAllocation struct {
	Name       string          `json:"name"`
	Symbol     string          `json:"symbol"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
	Color      string          `json:"color"`
}

// Allocation builds one row for free cash plus one per position worth
// anything at current prices. Positions under water past their margin
// are floored at zero rather than shown negative. Rows sort by value
// descending; equal values keep insertion order so sequences are
// deterministic.
func Allocation(acc *model.Account, prices map[string]decimal.Decimal) []AssetAllocation {
	equity := Equity(acc, prices)
	rows := make([]AssetAllocation, 0, len(acc.Positions)+1)

	if acc.Balance.GreaterThan(decimal.Zero) {
		rows = append(rows, AssetAllocation{
			Name:   "US Dollar",
			Symbol: "USD",
			Value:  acc.Balance,
			Color:  cashColor,
		})
	}
	for i, pos := range acc.Positions {
		value := pos.Margin().Add(pos.PnL(priceFor(pos, prices)))
		if !value.GreaterThan(decimal.Zero) {
			continue
		}
		rows = append(rows, AssetAllocation{
			Name:   pos.Name,
			Symbol: pos.Symbol,
			Value:  value,
			Color:  palette[i%len(palette)],
		})
	}
	if equity.GreaterThan(decimal.Zero) {
		for i := range rows {
			pct, _ := rows[i].Value.Div(equity).Mul(decimal.NewFromInt(100)).Float64()
			rows[i].Percentage = pct
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Value.GreaterThan(rows[j].Value)
	})
	return rows
}

type PerformancePoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// PerformanceHistory emits a synthetic equity curve: a backward random
// walk anchored at current equity, returned oldest first. Illustrative
// only, not a ledger of real historical states; pass a seeded rng for a
// reproducible series.
func PerformanceHistory(acc *model.Account, prices map[string]decimal.Decimal, days int, rng *rand.Rand) []PerformancePoint {
	if days <= 0 {
		days = 30
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := time.Now().UTC()
	value, _ := Equity(acc, prices).Float64()

	points := make([]PerformancePoint, 0, days)
	for i := 0; i < days; i++ {
		points = append(points, PerformancePoint{
			Date:  now.AddDate(0, 0, -i),
			Value: decimal.NewFromFloat(value),
		})
		change := 1 + (rng.Float64()-0.5)*Volatility
		value = value / change
	}
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points
}
