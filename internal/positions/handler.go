package positions

import (
	"errors"
	"net/http"
	"time"

	"cryptopulse/internal/httputil"
	"cryptopulse/internal/marketdata"
	"cryptopulse/internal/session"
	"cryptopulse/internal/store"
	"cryptopulse/internal/types"

	"github.com/shopspring/decimal"
)

type Handler struct {
	svc      *Service
	resolver *session.Resolver
	oracle   *marketdata.Oracle
}

func NewHandler(svc *Service, resolver *session.Resolver, oracle *marketdata.Oracle) *Handler {
	return &Handler{svc: svc, resolver: resolver, oracle: oracle}
}

type openRequest struct {
	AssetID   string `json:"asset_id"`
	Direction string `json:"direction"`
	Quantity  string `json:"quantity"`
	Leverage  string `json:"leverage"`
}

type closeRequest struct {
	PositionID string `json:"position_id"`
}

func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *ValidationError
	var fundsErr *InsufficientFundsError
	switch {
	case errors.As(err, &vErr):
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
	case errors.As(err, &fundsErr):
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":     err.Error(),
			"shortfall": fundsErr.Shortfall.StringFixed(2),
		})
	case errors.Is(err, store.ErrNotFound):
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
	default:
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: err.Error()})
	}
}

func (h *Handler) Open(w http.ResponseWriter, r *http.Request, sess session.Session) {
	var req openRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	asset, ok := h.oracle.Asset(req.AssetID)
	if !ok {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "asset not found"})
		return
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid quantity"})
		return
	}
	leverage := decimal.NewFromInt(1)
	if req.Leverage != "" {
		leverage, err = decimal.NewFromString(req.Leverage)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid leverage"})
			return
		}
	}
	acc, pos, err := h.svc.Open(r.Context(), sess, OpenRequest{
		AssetID:      asset.ID,
		Symbol:       asset.Symbol,
		Name:         asset.Name,
		Category:     asset.Category,
		CurrentPrice: decimal.NewFromFloat(asset.Price),
		Direction:    types.PositionDirection(req.Direction),
		Quantity:     qty,
		Leverage:     leverage,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"position": pos,
		"balance":  acc.Balance,
	})
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request, sess session.Session) {
	var req closeRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	acc, err := h.resolver.Account(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	// Price the close off the live feed; a position on a delisted asset
	// settles at its entry price (no movement).
	currentPrice := decimal.Zero
	if idx, ok := acc.FindPosition(req.PositionID); ok {
		pos := acc.Positions[idx]
		currentPrice = pos.EntryPrice
		if live, ok := h.oracle.CurrentPrice(pos.AssetID); ok {
			currentPrice = live
		}
	} else {
		// Unknown id closes as a no-op; any positive price satisfies
		// the engine's validation.
		currentPrice = decimal.NewFromInt(1)
	}
	acc, err = h.svc.Close(r.Context(), sess, req.PositionID, currentPrice)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"balance":   acc.Balance,
		"positions": acc.Positions,
	})
}

type positionView struct {
	ID            string          `json:"id"`
	AssetID       string          `json:"asset_id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Direction     string          `json:"direction"`
	EntryPrice    decimal.Decimal `json:"entry_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	Quantity      decimal.Decimal `json:"quantity"`
	Leverage      decimal.Decimal `json:"leverage"`
	Margin        decimal.Decimal `json:"margin"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	OpenedAt      string          `json:"opened_at"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request, sess session.Session) {
	acc, err := h.resolver.Account(r.Context(), sess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	prices := h.oracle.PriceMap()
	out := make([]positionView, 0, len(acc.Positions))
	for _, pos := range acc.Positions {
		current, ok := prices[pos.AssetID]
		if !ok {
			current = pos.EntryPrice
		}
		out = append(out, positionView{
			ID:            pos.ID,
			AssetID:       pos.AssetID,
			Symbol:        pos.Symbol,
			Name:          pos.Name,
			Category:      string(pos.Category),
			Direction:     string(pos.Direction),
			EntryPrice:    pos.EntryPrice,
			CurrentPrice:  current,
			Quantity:      pos.Quantity,
			Leverage:      pos.Leverage,
			Margin:        pos.Margin(),
			UnrealizedPnL: pos.PnL(current),
			OpenedAt:      pos.OpenedAt.UTC().Format(time.RFC3339),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
