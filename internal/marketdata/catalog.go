package marketdata

import (
	"fmt"
	"os"

	"cryptopulse/internal/types"

	"gopkg.in/yaml.v3"
)

// Asset is a tradable instrument in the simulated feed. Price is the
// live (jittered) quote; everything downstream converts to decimal at
// the snapshot boundary.
type Asset struct {
	ID       string              `json:"id" yaml:"id"`
	Symbol   string              `json:"symbol" yaml:"symbol"`
	Name     string              `json:"name" yaml:"name"`
	Category types.AssetCategory `json:"category" yaml:"category"`
	Price    float64             `json:"price" yaml:"price"`
}

// DefaultCatalog covers the three supported asset classes.
func DefaultCatalog() []Asset {
	return []Asset{
		{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", Category: types.AssetCrypto, Price: 64000},
		{ID: "ethereum", Symbol: "ETH", Name: "Ethereum", Category: types.AssetCrypto, Price: 3050},
		{ID: "eur-usd", Symbol: "EURUSD", Name: "Euro / US Dollar", Category: types.AssetForex, Price: 1.08},
		{ID: "usd-jpy", Symbol: "USDJPY", Name: "US Dollar / Japanese Yen", Category: types.AssetForex, Price: 155},
		{ID: "usd-rub", Symbol: "USDRUB", Name: "US Dollar / Russian Ruble", Category: types.AssetForex, Price: 92},
		{ID: "usd-cny", Symbol: "USDCNY", Name: "US Dollar / Chinese Yuan", Category: types.AssetForex, Price: 7.24},
		{ID: "sp500", Symbol: "SP500", Name: "S&P 500 Futures", Category: types.AssetFutures, Price: 5200},
		{ID: "nasdaq", Symbol: "NASDAQ", Name: "Nasdaq 100 Futures", Category: types.AssetFutures, Price: 18000},
		{ID: "gold", Symbol: "GOLD", Name: "Gold Futures", Category: types.AssetFutures, Price: 2350},
		{ID: "oil", Symbol: "OIL", Name: "Crude Oil Futures", Category: types.AssetFutures, Price: 78},
	}
}

// LoadCatalog reads an asset list from a yaml file, falling back to the
// defaults when path is empty.
func LoadCatalog(path string) ([]Asset, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Assets []Asset `yaml:"assets"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if len(doc.Assets) == 0 {
		return nil, fmt.Errorf("catalog %s defines no assets", path)
	}
	for _, a := range doc.Assets {
		if a.ID == "" || a.Symbol == "" || a.Price <= 0 {
			return nil, fmt.Errorf("catalog %s: asset %q needs id, symbol and a positive price", path, a.ID)
		}
		switch a.Category {
		case types.AssetCrypto, types.AssetForex, types.AssetFutures:
		default:
			return nil, fmt.Errorf("catalog %s: asset %q has unknown category %q", path, a.ID, a.Category)
		}
	}
	return doc.Assets, nil
}
