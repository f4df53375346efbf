package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"
)

type contextKey string

// userContextKey holds the *User resolved by BearerAuth for the lifetime
// of a single request.
const userContextKey contextKey = "user"

// userFrom returns the authenticated user attached by BearerAuth.
func userFrom(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey).(*User)
	return u, ok
}

// BearerAuth gates protected routes. Rejection states, in order:
// missing header -> 401, bad/expired token -> 403 (the two are
// deliberately indistinguishable to the client), token valid but user
// row gone -> 404. On success the resolved user is attached to the
// request context and the next handler runs.
func (a *App) BearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := ""
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}

		claims, err := a.Tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusForbidden, "INVALID_TOKEN", "Invalid token")
			return
		}

		// The user may have been deleted after the token was issued.
		// The lookup result must be nil-checked here: a query result is
		// "present" even when it matched no rows, so testing presence
		// alone would hand out an undefined identity.
		user, err := a.DB.GetUserByID(claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
			return
		}
		if user == nil {
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORS allows the single origin configured at startup.
func (a *App) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.CORSOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", a.CORSOrigin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Logging middleware logs requests
func (a *App) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		log.Printf("[%s] %s %s %d %v", r.Method, r.URL.Path, r.RemoteAddr, wrapped.statusCode, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// SecurityHeaders middleware adds security headers
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}
