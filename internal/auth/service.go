package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"cryptopulse/internal/model"
	"cryptopulse/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateAccount = errors.New("account with this email already exists")
	// Single message for unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	store       store.Store
	issuer      string
	secret      []byte
	ttl         time.Duration
	signupBonus decimal.Decimal
	log         zerolog.Logger
}

func NewService(st store.Store, issuer string, secret []byte, ttl time.Duration, signupBonus decimal.Decimal, log zerolog.Logger) *Service {
	return &Service{store: st, issuer: issuer, secret: secret, ttl: ttl, signupBonus: signupBonus, log: log}
}

func defaultPreferences() model.Preferences {
	return model.Preferences{
		Currency: "USD",
		Language: "RU",
		Notifications: model.Notifications{
			Email: true,
			Push:  true,
		},
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, errors.New("name, email and password required")
	}
	_, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrDuplicateAccount
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	acc := &model.Account{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		Balance:        s.signupBonus,
		InitialCapital: s.signupBonus,
		Positions:      []model.Position{},
		Transactions:   []model.Transaction{},
		Preferences:    defaultPreferences(),
		MemberSince:    time.Now().UTC(),
		Level:          1,
		Achievements:   []model.AchievementUnlock{},
	}
	if err := s.store.Put(ctx, acc); err != nil {
		return nil, err
	}
	s.log.Info().Str("account_id", acc.ID).Msg("account registered")
	return acc, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *model.Account, error) {
	acc, err := s.store.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.signToken(acc.ID)
	if err != nil {
		return "", nil, err
	}
	return token, acc, nil
}

// EnsureDemoAccount seeds the pro demo account at boot. Idempotent.
func (s *Service) EnsureDemoAccount(ctx context.Context, email, password string, capital decimal.Decimal) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	acc, err := s.store.GetByEmail(ctx, email)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	acc = &model.Account{
		ID:             uuid.NewString(),
		Name:           "Demo Trader",
		Email:          email,
		PasswordHash:   string(hash),
		Balance:        capital,
		InitialCapital: capital,
		Positions:      []model.Position{},
		Transactions:   []model.Transaction{},
		Preferences:    defaultPreferences(),
		IsPro:          true,
		MemberSince:    time.Now().UTC(),
		Level:          1,
		Achievements:   []model.AchievementUnlock{},
	}
	if err := s.store.Put(ctx, acc); err != nil {
		return nil, err
	}
	s.log.Info().Str("account_id", acc.ID).Msg("demo account seeded")
	return acc, nil
}

func (s *Service) signToken(accountID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *Service) ParseToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Issuer != s.issuer {
		return "", errors.New("invalid issuer")
	}
	if claims.Subject == "" {
		return "", errors.New("invalid subject")
	}
	return claims.Subject, nil
}
