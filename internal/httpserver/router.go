package httpserver

import (
	"net/http"

	"cryptopulse/internal/auth"
	"cryptopulse/internal/httputil"
	"cryptopulse/internal/ledger"
	"cryptopulse/internal/marketdata"
	"cryptopulse/internal/portfolio"
	"cryptopulse/internal/positions"
	"cryptopulse/internal/progression"
	"cryptopulse/internal/session"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	AuthHandler        *auth.Handler
	PositionHandler    *positions.Handler
	LedgerHandler      *ledger.Handler
	PortfolioHandler   *portfolio.Handler
	ProgressionHandler *progression.Handler
	MarketHandler      *marketdata.Handler
	AuthService        *auth.Service
	WSHandler          http.Handler
}

// sessHandler adapts an account-scoped handler to http.HandlerFunc.
// The auth middleware must have run first.
func sessHandler(fn func(http.ResponseWriter, *http.Request, session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := Sess(r)
		if !ok {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{Error: "unauthorized"})
			return
		}
		fn(w, r, sess)
	}
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS middleware for development
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	// Security Middleware
	r.Use(SecurityHeaders)
	r.Use(RateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.AuthHandler.Register)
			r.Post("/login", d.AuthHandler.Login)
		})
		r.Get("/events/ws", d.WSHandler.ServeHTTP)
		r.Get("/market/assets", d.MarketHandler.Assets)
		r.Get("/market/config", d.MarketHandler.GetConfig)
		r.Post("/market/config", d.MarketHandler.SetConfig)
		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))
			r.Get("/me", sessHandler(d.AuthHandler.Me))
			r.Get("/positions", sessHandler(d.PositionHandler.List))
			r.Post("/positions", sessHandler(d.PositionHandler.Open))
			r.Post("/positions/close", sessHandler(d.PositionHandler.Close))
			r.Post("/deposit", sessHandler(d.LedgerHandler.Deposit))
			r.Post("/reset", sessHandler(d.LedgerHandler.Reset))
			r.Put("/profile", sessHandler(d.LedgerHandler.UpdateProfile))
			r.Get("/transactions", sessHandler(d.LedgerHandler.Transactions))
			r.Get("/portfolio/metrics", sessHandler(d.PortfolioHandler.Metrics))
			r.Get("/portfolio/allocation", sessHandler(d.PortfolioHandler.Allocation))
			r.Get("/portfolio/history", sessHandler(d.PortfolioHandler.History))
			r.Get("/achievements", sessHandler(d.ProgressionHandler.List))
			r.Post("/achievements/check", sessHandler(d.ProgressionHandler.Check))
			r.Get("/achievements/progress", sessHandler(d.ProgressionHandler.Progress))
		})
	})
	return r
}
