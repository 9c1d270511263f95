package portfolio

import (
	"errors"
	"net/http"
	"strconv"

	"cryptopulse/internal/httputil"
	"cryptopulse/internal/marketdata"
	"cryptopulse/internal/model"
	"cryptopulse/internal/session"
	"cryptopulse/internal/store"
)

type Handler struct {
	resolver *session.Resolver
	oracle   *marketdata.Oracle
}

func NewHandler(resolver *session.Resolver, oracle *marketdata.Oracle) *Handler {
	return &Handler{resolver: resolver, oracle: oracle}
}

func (h *Handler) account(w http.ResponseWriter, r *http.Request, sess session.Session) (*model.Account, bool) {
	acc, err := h.resolver.Account(r.Context(), sess)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
		} else {
			httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: err.Error()})
		}
		return nil, false
	}
	return acc, true
}

func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request, sess session.Session) {
	acc, ok := h.account(w, r, sess)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AccountMetrics(acc, h.oracle.PriceMap()))
}

func (h *Handler) Allocation(w http.ResponseWriter, r *http.Request, sess session.Session) {
	acc, ok := h.account(w, r, sess)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, Allocation(acc, h.oracle.PriceMap()))
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request, sess session.Session) {
	acc, ok := h.account(w, r, sess)
	if !ok {
		return
	}
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 365 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "days must be between 1 and 365"})
			return
		}
		days = parsed
	}
	httputil.WriteJSON(w, http.StatusOK, PerformanceHistory(acc, h.oracle.PriceMap(), days, nil))
}
