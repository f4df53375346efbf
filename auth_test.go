package main

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	h, err := hashPassword("secret123")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", h)

	require.True(t, comparePassword(h, "secret123"))
	require.False(t, comparePassword(h, "secret124"))
	require.False(t, comparePassword(h, ""))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := hashPassword("secret123")
	require.NoError(t, err)
	h2, err := hashPassword("secret123")
	require.NoError(t, err)

	// different salt per call, both still verify
	require.NotEqual(t, h1, h2)
	require.True(t, comparePassword(h1, "secret123"))
	require.True(t, comparePassword(h2, "secret123"))
}

func TestComparePasswordMalformedHash(t *testing.T) {
	// a corrupted stored hash is a mismatch, not an error
	require.False(t, comparePassword("not-a-bcrypt-hash", "secret123"))
	require.False(t, comparePassword("", "secret123"))
}

func TestNewTokenServiceEmptySecret(t *testing.T) {
	_, err := NewTokenService(nil)
	require.Error(t, err)
	_, err = NewTokenService([]byte{})
	require.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	ts, err := NewTokenService([]byte("test-secret"))
	require.NoError(t, err)

	user := &User{ID: 42, Email: "a@x.com"}
	token, err := ts.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "a@x.com", claims.Email)
	require.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer, err := NewTokenService([]byte("secret-one"))
	require.NoError(t, err)
	verifier, err := NewTokenService([]byte("secret-two"))
	require.NoError(t, err)

	token, err := issuer.Issue(&User{ID: 1, Email: "a@x.com"})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	ts, err := NewTokenService([]byte("test-secret"))
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := ts.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerifyExpired(t *testing.T) {
	secret := []byte("test-secret")
	ts, err := NewTokenService(secret)
	require.NoError(t, err)

	token := signTestToken(t, secret, jwt.SigningMethodHS256, 1, "a@x.com", -time.Minute)
	_, err = ts.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSigningMethod(t *testing.T) {
	secret := []byte("test-secret")
	ts, err := NewTokenService(secret)
	require.NoError(t, err)

	token := signTestToken(t, secret, jwt.SigningMethodHS512, 1, "a@x.com", time.Hour)
	_, err = ts.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func signTestToken(t *testing.T, secret []byte, method jwt.SigningMethod, userID int64, email string, ttl time.Duration) string {
	t.Helper()
	now := time.Now().UTC()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	token, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}
