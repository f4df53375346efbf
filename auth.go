package main

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL is the fixed lifetime of an access token. Tokens are stateless:
// once issued they stay valid until expiry and cannot be revoked.
const tokenTTL = 3 * time.Hour

// ErrInvalidToken covers every verification failure: bad signature, garbage
// input, wrong signing method, expiry. Callers must not distinguish them.
var ErrInvalidToken = errors.New("invalid token")

func hashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(b), err
}

// comparePassword returns false for any mismatch, including a malformed
// stored hash. The comparison itself is constant-time inside bcrypt.
func comparePassword(hash, p string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(p)) == nil
}

// Claims is the access-token payload: user identity plus the registered
// iat/exp/jti set.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens. The secret is
// injected at construction and immutable afterwards; rotating it
// invalidates every outstanding token.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret []byte) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret must not be empty")
	}
	return &TokenService{secret: secret}, nil
}

// Issue signs a token for an already-verified identity. No side effects,
// no database interaction.
func (ts *TokenService) Issue(user *User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.secret)
}

// Verify checks signature and expiry and returns the embedded claims.
// All failure modes collapse into ErrInvalidToken.
func (ts *TokenService) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return ts.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
