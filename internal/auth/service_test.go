package auth

import (
	"context"
	"testing"
	"time"

	"cryptopulse/internal/store"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(store.NewMemory(), "cryptopulse-test", []byte("test-secret"), time.Hour, decimal.NewFromInt(10000), zerolog.Nop())
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	acc, err := svc.Register(context.Background(), "Alex", "Alex@Example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", acc.Email, "email is normalized")
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(10000)))
	assert.True(t, acc.InitialCapital.Equal(acc.Balance))
	assert.Equal(t, 1, acc.Level)
	assert.Equal(t, "USD", acc.Preferences.Currency)
	assert.True(t, acc.Preferences.Notifications.Email)
	assert.NotEmpty(t, acc.PasswordHash)
	assert.NotEqual(t, "hunter22", acc.PasswordHash)

	token, got, err := svc.Login(context.Background(), "alex@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	subject, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, subject)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, err := svc.Register(context.Background(), "Alex", "alex@example.com", "hunter22")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Other", "ALEX@example.com", "different")
	require.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestRegisterRequiresAllFields(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, err := svc.Register(context.Background(), "", "a@b.c", "pw")
	require.Error(t, err)
	_, err = svc.Register(context.Background(), "Name", "", "pw")
	require.Error(t, err)
	_, err = svc.Register(context.Background(), "Name", "a@b.c", "")
	require.Error(t, err)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	svc := newService(t)

	_, err := svc.Register(context.Background(), "Alex", "alex@example.com", "hunter22")
	require.NoError(t, err)

	_, _, unknownErr := svc.Login(context.Background(), "nobody@example.com", "hunter22")
	_, _, wrongErr := svc.Login(context.Background(), "alex@example.com", "wrong")
	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	other := NewService(store.NewMemory(), "cryptopulse-test", []byte("other-secret"), time.Hour, decimal.NewFromInt(10000), zerolog.Nop())

	acc, err := svc.Register(context.Background(), "Alex", "alex@example.com", "hunter22")
	require.NoError(t, err)
	token, _, err := svc.Login(context.Background(), acc.Email, "hunter22")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsForeignIssuer(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	other := NewService(store.NewMemory(), "someone-else", []byte("test-secret"), time.Hour, decimal.NewFromInt(10000), zerolog.Nop())

	_, err := svc.Register(context.Background(), "Alex", "alex@example.com", "hunter22")
	require.NoError(t, err)
	token, _, err := svc.Login(context.Background(), "alex@example.com", "hunter22")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
}

func TestEnsureDemoAccountIdempotent(t *testing.T) {
	t.Parallel()
	svc := newService(t)
	capital := decimal.NewFromInt(100000)

	first, err := svc.EnsureDemoAccount(context.Background(), "demo@example.com", "demo-pass", capital)
	require.NoError(t, err)
	assert.True(t, first.IsPro)
	assert.True(t, first.Balance.Equal(capital))

	second, err := svc.EnsureDemoAccount(context.Background(), "demo@example.com", "demo-pass", capital)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "reseeding must not create a new account")
}
