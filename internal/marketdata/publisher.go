package marketdata

import (
	"context"
	"time"

	"cryptopulse/internal/events"

	"github.com/rs/zerolog"
)

type QuoteEvent struct {
	AssetID   string  `json:"asset_id"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// StartPublisher ticks the oracle and fans the fresh quotes out on the
// bus until the context is canceled.
func StartPublisher(ctx context.Context, bus *events.Bus, oracle *Oracle, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	log.Info().Dur("interval", interval).Msg("quote publisher started")
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("quote publisher stopped")
				return
			case <-ticker.C:
				oracle.Tick()
				now := time.Now().UnixMilli()
				for _, a := range oracle.Assets() {
					bus.Publish(events.Event{Type: events.TypeQuote, Data: QuoteEvent{
						AssetID:   a.ID,
						Symbol:    a.Symbol,
						Price:     a.Price,
						Timestamp: now,
					}})
				}
			}
		}
	}()
}
