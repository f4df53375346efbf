package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterIssuesValidToken(t *testing.T) {
	a := newTestApp(t)
	token := registerUser(t, a, "Ann", "a@x.com", "secret123")

	claims, err := a.Tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Email)

	// stored password is hashed, never plaintext
	u, err := a.DB.GetUserByEmail("a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEqual(t, "secret123", u.Password)
	require.True(t, comparePassword(u.Password, "secret123"))
}

func TestRegisterMissingFields(t *testing.T) {
	a := newTestApp(t)
	for _, body := range []map[string]string{
		{"email": "a@x.com", "password": "secret123"},
		{"name": "Ann", "password": "secret123"},
		{"name": "Ann", "email": "a@x.com"},
	} {
		rec := doJSON(t, a, "POST", "/auth/register", "", body)
		require.Equal(t, 400, rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a := newTestApp(t)
	registerUser(t, a, "Ann", "a@x.com", "secret123")

	rec := doJSON(t, a, "POST", "/auth/register", "", map[string]string{
		"name": "Ann Again", "email": "a@x.com", "password": "other456",
	})
	require.Equal(t, 409, rec.Code)

	// first row untouched
	u, err := a.DB.GetUserByEmail("a@x.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, "Ann", u.Name)
	require.True(t, comparePassword(u.Password, "secret123"))
}

func TestLoginSuccess(t *testing.T) {
	a := newTestApp(t)
	registerUser(t, a, "Ann", "a@x.com", "secret123")

	rec := doJSON(t, a, "POST", "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "secret123",
	})
	require.Equal(t, 200, rec.Code)

	var out struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &out)
	claims, err := a.Tokens.Verify(out.Token)
	require.NoError(t, err)
	require.Equal(t, int64(1), claims.UserID)
}

func TestLoginFailuresShareMessage(t *testing.T) {
	a := newTestApp(t)
	registerUser(t, a, "Ann", "a@x.com", "secret123")

	unknown := doJSON(t, a, "POST", "/auth/login", "", map[string]string{
		"email": "nobody@x.com", "password": "secret123",
	})
	require.Equal(t, 404, unknown.Code)

	wrongPassword := doJSON(t, a, "POST", "/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	require.Equal(t, 401, wrongPassword.Code)

	// anti-enumeration: the client-facing message must not reveal which
	// part of the credentials was wrong
	var e1, e2 APIError
	decodeBody(t, unknown, &e1)
	decodeBody(t, wrongPassword, &e2)
	require.Equal(t, e1.Message, e2.Message)
	require.Equal(t, e1.Code, e2.Code)
}
