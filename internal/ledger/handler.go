package ledger

import (
	"errors"
	"net/http"
	"strings"

	"cryptopulse/internal/httputil"
	"cryptopulse/internal/session"
	"cryptopulse/internal/store"
	"cryptopulse/internal/types"

	"github.com/shopspring/decimal"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type depositRequest struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method"`
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	var readErr *store.ReadError
	var writeErr *store.WriteError
	if errors.As(err, &readErr) || errors.As(err, &writeErr) {
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request, sess session.Session) {
	var req depositRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: "invalid amount"})
		return
	}
	currency := types.DepositCurrency(strings.ToUpper(strings.TrimSpace(req.Currency)))
	acc, txn, err := h.svc.Deposit(r.Context(), sess, amount, currency, req.Method)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"balance":     acc.Balance,
		"transaction": txn,
	})
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request, sess session.Session) {
	acc, err := h.svc.Reset(r.Context(), sess)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acc.Redacted())
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request, sess session.Session) {
	var update ProfileUpdate
	if err := httputil.ReadJSON(r, &update); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	acc, err := h.svc.UpdateProfile(r.Context(), sess, update)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acc.Redacted())
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request, sess session.Session) {
	acc, err := h.svc.resolver.Account(r.Context(), sess)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acc.Transactions)
}
