package marketdata

import (
	"net/http"
	"strings"

	"cryptopulse/internal/httputil"
	"cryptopulse/internal/types"
)

type Handler struct {
	oracle *Oracle
}

func NewHandler(oracle *Oracle) *Handler {
	return &Handler{oracle: oracle}
}

func (h *Handler) Assets(w http.ResponseWriter, r *http.Request) {
	assets := h.oracle.Assets()
	if category := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("category"))); category != "" {
		filtered := make([]Asset, 0, len(assets))
		for _, a := range assets {
			if string(a.Category) == category {
				filtered = append(filtered, a)
			}
		}
		assets = filtered
	}
	httputil.WriteJSON(w, http.StatusOK, assets)
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.oracle.Config())
}

type configRequest struct {
	Volatility float64 `json:"volatility"`
	Bias       string  `json:"bias"`
}

func (h *Handler) SetConfig(w http.ResponseWriter, r *http.Request) {
	var req configRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	cfg := SystemConfig{
		Volatility: req.Volatility,
		Bias:       types.MarketBias(strings.ToUpper(strings.TrimSpace(req.Bias))),
	}
	if err := h.oracle.SetConfig(cfg); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.oracle.Config())
}
