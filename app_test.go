package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) *App {
	t.Helper()
	tokens, err := NewTokenService([]byte(testSecret))
	require.NoError(t, err)
	return &App{DB: NewMemoryDB(), Tokens: tokens}
}

// doJSON performs a request against the app's full router, with body
// marshalled to JSON and an optional bearer token.
func doJSON(t *testing.T, a *App, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

// registerUser registers a user through the HTTP surface and returns
// the issued token.
func registerUser(t *testing.T, a *App, name, email, password string) string {
	t.Helper()
	rec := doJSON(t, a, "POST", "/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, 201, rec.Code)
	var out struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}
