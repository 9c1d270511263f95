package portfolio

import (
	"cryptopulse/internal/model"

	"github.com/shopspring/decimal"
)

type Metrics struct {
	Balance       decimal.Decimal `json:"balance"`
	Equity        decimal.Decimal `json:"equity"`
	Margin        decimal.Decimal `json:"margin"`
	FreeMargin    decimal.Decimal `json:"free_margin"`
	MarginLevel   decimal.Decimal `json:"margin_level"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

// AccountMetrics marks the account to market in one pass. MarginLevel
// is equity over committed margin in percent, zero while nothing is
// open.
func AccountMetrics(acc *model.Account, prices map[string]decimal.Decimal) Metrics {
	margin := acc.CommittedMargin()
	pnl := UnrealizedPnL(acc, prices)
	equity := acc.Balance.Add(margin).Add(pnl)

	var marginLevel decimal.Decimal
	if margin.GreaterThan(decimal.Zero) {
		marginLevel = equity.Div(margin).Mul(decimal.NewFromInt(100))
	}
	return Metrics{
		Balance:       acc.Balance,
		Equity:        equity,
		Margin:        margin,
		FreeMargin:    equity.Sub(margin),
		MarginLevel:   marginLevel,
		UnrealizedPnL: pnl,
	}
}
