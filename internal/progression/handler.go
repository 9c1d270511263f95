package progression

import (
	"errors"
	"net/http"

	"cryptopulse/internal/httputil"
	"cryptopulse/internal/marketdata"
	"cryptopulse/internal/session"
	"cryptopulse/internal/store"
)

type Handler struct {
	svc    *Service
	oracle *marketdata.Oracle
}

func NewHandler(svc *Service, oracle *marketdata.Oracle) *Handler {
	return &Handler{svc: svc, oracle: oracle}
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Error: err.Error()})
		return
	}
	httputil.WriteJSON(w, http.StatusInternalServerError, httputil.ErrorResponse{Error: err.Error()})
}

type achievementView struct {
	Achievement
	Unlocked   bool   `json:"unlocked"`
	UnlockedAt string `json:"unlocked_at,omitempty"`
}

// List returns the full catalog annotated with the account's unlocks.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, sess session.Session) {
	acc, err := h.svc.resolver.Account(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	unlockedAt := make(map[string]string, len(acc.Achievements))
	for _, u := range acc.Achievements {
		unlockedAt[u.ID] = u.UnlockedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	out := make([]achievementView, 0, len(Catalog))
	for _, a := range Catalog {
		at, ok := unlockedAt[a.ID]
		out = append(out, achievementView{Achievement: a, Unlocked: ok, UnlockedAt: at})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request, sess session.Session) {
	unlocked, acc, err := h.svc.CheckAchievements(r.Context(), sess, h.oracle.PriceMap())
	if err != nil {
		writeError(w, err)
		return
	}
	if unlocked == nil {
		unlocked = []Achievement{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"unlocked": unlocked,
		"level":    acc.Level,
		"xp":       acc.XP,
	})
}

func (h *Handler) Progress(w http.ResponseWriter, r *http.Request, sess session.Session) {
	acc, err := h.svc.resolver.Account(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"level":    acc.Level,
		"xp":       acc.XP,
		"progress": LevelProgress(acc),
	})
}
