package marketdata

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"cryptopulse/internal/types"

	"github.com/shopspring/decimal"
)

// Per-category base volatility for a single jitter step.
const (
	cryptoStepVolatility = 0.002
	quietStepVolatility  = 0.0005
)

// SystemConfig are the operator knobs over the simulated market.
type SystemConfig struct {
	// Volatility multiplies the per-category base volatility, 0.1–5.0.
	Volatility float64 `json:"volatility"`
	// Bias skews the jitter direction.
	Bias types.MarketBias `json:"bias"`
}

func (c SystemConfig) validate() error {
	if c.Volatility < 0.1 || c.Volatility > 5.0 {
		return errors.New("volatility must be between 0.1 and 5.0")
	}
	switch c.Bias {
	case types.BiasNeutral, types.BiasBullish, types.BiasBearish:
		return nil
	default:
		return errors.New("bias must be NEUTRAL, BULLISH or BEARISH")
	}
}

// Oracle supplies current prices for the asset catalog, drifting them
// with a biased random jitter on every Tick.
type Oracle struct {
	mu     sync.RWMutex
	assets []Asset
	config SystemConfig
	rng    *rand.Rand
}

func NewOracle(assets []Asset, rng *rand.Rand) *Oracle {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Oracle{
		assets: append([]Asset(nil), assets...),
		config: SystemConfig{Volatility: 1.0, Bias: types.BiasNeutral},
		rng:    rng,
	}
}

func (o *Oracle) Config() SystemConfig {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.config
}

func (o *Oracle) SetConfig(cfg SystemConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	o.mu.Lock()
	o.config = cfg
	o.mu.Unlock()
	return nil
}

// Tick advances every price one jitter step.
func (o *Oracle) Tick() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.assets {
		base := quietStepVolatility
		if o.assets[i].Category == types.AssetCrypto {
			base = cryptoStepVolatility
		}
		direction := o.rng.Float64() - 0.5
		switch o.config.Bias {
		case types.BiasBullish:
			direction += 0.2
		case types.BiasBearish:
			direction -= 0.2
		}
		o.assets[i].Price *= 1 + direction*base*o.config.Volatility
	}
}

// Assets returns a snapshot of the catalog with current prices.
func (o *Oracle) Assets() []Asset {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]Asset(nil), o.assets...)
}

// Asset looks up a single instrument by id.
func (o *Oracle) Asset(id string) (Asset, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, a := range o.assets {
		if a.ID == id {
			return a, true
		}
	}
	return Asset{}, false
}

// CurrentPrice implements the price-oracle contract for one asset.
func (o *Oracle) CurrentPrice(assetID string) (decimal.Decimal, bool) {
	a, ok := o.Asset(assetID)
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(a.Price), true
}

// PriceMap snapshots all current prices keyed by asset id, the shape
// the analytics and progression calls consume.
func (o *Oracle) PriceMap() map[string]decimal.Decimal {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make(map[string]decimal.Decimal, len(o.assets))
	for _, a := range o.assets {
		out[a.ID] = decimal.NewFromFloat(a.Price)
	}
	return out
}
