package httpserver

import (
	"context"
	"net/http"
	"strings"

	"cryptopulse/internal/auth"
	"cryptopulse/internal/httputil"
	"cryptopulse/internal/session"
)

type ctxKey string

const sessionKey ctxKey = "session"

func WithAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "missing bearer token"})
				return
			}
			accountID, err := svc.ParseToken(parts[1])
			if err != nil {
				httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "invalid token"})
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, session.Session{AccountID: accountID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Sess(r *http.Request) (session.Session, bool) {
	v := r.Context().Value(sessionKey)
	if v == nil {
		return session.Session{}, false
	}
	sess, ok := v.(session.Session)
	return sess, ok
}
