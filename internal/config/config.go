package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string
	DBDSN           string
	JWTIssuer       string
	JWTSecret       string
	JWTTTL          time.Duration
	WebSocketOrigin string
	PulseMode       string
	LogLevel        string
	MarketDataFile  string
	DemoEmail       string
	DemoPassword    string
	StartingCapital string
	SignupBonus     string
}

func Load() (Config, error) {
	var c Config
	var missing []string
	c.HTTPAddr = os.Getenv("HTTP_ADDR")
	if c.HTTPAddr == "" {
		missing = append(missing, "HTTP_ADDR")
	}
	c.JWTIssuer = os.Getenv("JWT_ISSUER")
	if c.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	c.JWTSecret = os.Getenv("JWT_SECRET")
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	jwtTTL := os.Getenv("JWT_TTL")
	if jwtTTL == "" {
		missing = append(missing, "JWT_TTL")
	} else {
		d, err := time.ParseDuration(jwtTTL)
		if err != nil {
			return c, err
		}
		c.JWTTTL = d
	}
	c.WebSocketOrigin = os.Getenv("WS_ORIGIN")
	if c.WebSocketOrigin == "" {
		missing = append(missing, "WS_ORIGIN")
	}
	// Empty DB_DSN falls back to the in-memory store; the paper account
	// survives only for the lifetime of the process in that mode.
	c.DBDSN = os.Getenv("DB_DSN")
	c.PulseMode = strings.ToLower(strings.TrimSpace(os.Getenv("PULSE_MODE")))
	if c.PulseMode == "" {
		c.PulseMode = "development"
	}
	if c.PulseMode != "development" && c.PulseMode != "production" {
		return c, errors.New("invalid PULSE_MODE: use development or production")
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.MarketDataFile = os.Getenv("MARKETDATA_FILE")
	c.DemoEmail = strings.TrimSpace(os.Getenv("DEMO_EMAIL"))
	c.DemoPassword = os.Getenv("DEMO_PASSWORD")
	c.StartingCapital = os.Getenv("STARTING_CAPITAL")
	if c.StartingCapital == "" {
		c.StartingCapital = "100000"
	}
	c.SignupBonus = os.Getenv("SIGNUP_BONUS")
	if c.SignupBonus == "" {
		c.SignupBonus = "10000"
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}
