package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptopulse/internal/auth"
	"cryptopulse/internal/config"
	"cryptopulse/internal/db"
	"cryptopulse/internal/events"
	"cryptopulse/internal/httpserver"
	"cryptopulse/internal/ledger"
	"cryptopulse/internal/marketdata"
	"cryptopulse/internal/portfolio"
	"cryptopulse/internal/positions"
	"cryptopulse/internal/progression"
	"cryptopulse/internal/session"
	"cryptopulse/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.PulseMode == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("config")
	}
	log := newLogger(cfg)
	ctx := context.Background()

	var st store.Store
	if cfg.DBDSN != "" {
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("connect database")
		}
		defer pool.Close()
		pg := store.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("migrate schema")
		}
		st = pg
		log.Info().Msg("using postgres store")
	} else {
		st = store.NewMemory()
		log.Warn().Msg("DB_DSN empty, using in-memory store")
	}

	signupBonus, err := decimal.NewFromString(cfg.SignupBonus)
	if err != nil {
		log.Fatal().Err(err).Msg("parse SIGNUP_BONUS")
	}
	startingCapital, err := decimal.NewFromString(cfg.StartingCapital)
	if err != nil {
		log.Fatal().Err(err).Msg("parse STARTING_CAPITAL")
	}

	assets := marketdata.DefaultCatalog()
	if cfg.MarketDataFile != "" {
		assets, err = marketdata.LoadCatalog(cfg.MarketDataFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.MarketDataFile).Msg("load asset catalog")
		}
	}
	oracle := marketdata.NewOracle(assets, nil)

	bus := events.NewBus()
	resolver := session.NewResolver(st)
	authSvc := auth.NewService(st, cfg.JWTIssuer, []byte(cfg.JWTSecret), cfg.JWTTTL, signupBonus, log)
	positionSvc := positions.NewService(st, resolver, bus, log)
	ledgerSvc := ledger.NewService(st, resolver, bus, log)
	progressionSvc := progression.NewService(st, resolver, bus, log)

	if cfg.DemoEmail != "" {
		if _, err := authSvc.EnsureDemoAccount(ctx, cfg.DemoEmail, cfg.DemoPassword, startingCapital); err != nil {
			log.Fatal().Err(err).Msg("seed demo account")
		}
	}

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:        auth.NewHandler(authSvc, resolver),
		PositionHandler:    positions.NewHandler(positionSvc, resolver, oracle),
		LedgerHandler:      ledger.NewHandler(ledgerSvc),
		PortfolioHandler:   portfolio.NewHandler(resolver, oracle),
		ProgressionHandler: progression.NewHandler(progressionSvc, oracle),
		MarketHandler:      marketdata.NewHandler(oracle),
		AuthService:        authSvc,
		WSHandler:          httpserver.NewWSHandler(bus, authSvc, cfg.WebSocketOrigin),
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	pubCtx, cancelPub := context.WithCancel(ctx)
	defer cancelPub()
	marketdata.StartPublisher(pubCtx, bus, oracle, 2*time.Second, log)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("server listening")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		cancelPub()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server")
	}
}
