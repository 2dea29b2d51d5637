package services

import (
	"testing"
	"time"

	"netqoe/internal/core/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(ttl time.Duration) *authService {
	return NewAuthService("test-secret", ttl).(*authService)
}

func TestAuthService_RoundTrip(t *testing.T) {
	svc := newTestAuthService(time.Hour)

	token, expiresAt, err := svc.GenerateToken(domain.Principal{
		UserID:   "u-1",
		Username: "alice",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	principal, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u-1"), principal.UserID)
	assert.Equal(t, "alice", principal.Username)
	assert.True(t, principal.IsAdmin())
}

func TestAuthService_DefaultsToEngineerRole(t *testing.T) {
	svc := newTestAuthService(time.Hour)

	token, _, err := svc.GenerateToken(domain.Principal{UserID: "u-2", Username: "bob"})
	require.NoError(t, err)

	principal, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleEngineer, principal.Role)
	assert.False(t, principal.IsAdmin())
}

func TestAuthService_ExpiredToken(t *testing.T) {
	svc := newTestAuthService(time.Minute)
	issued := time.Now()
	svc.now = func() time.Time { return issued }

	token, _, err := svc.GenerateToken(domain.Principal{UserID: "u-1", Username: "alice"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestAuthService_RejectsForeignSignature(t *testing.T) {
	other := NewAuthService("other-secret", time.Hour)
	token, _, err := other.GenerateToken(domain.Principal{UserID: "u-1", Username: "alice"})
	require.NoError(t, err)

	_, err = newTestAuthService(time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RejectsUnknownRole(t *testing.T) {
	claims := &Claims{
		UserID:   "u-1",
		Username: "mallory",
		Role:     "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = newTestAuthService(time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{
		UserID: "u-1",
		Role:   domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestAuthService(time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_Garbage(t *testing.T) {
	_, err := newTestAuthService(time.Hour).ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
