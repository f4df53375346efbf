package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfg "github.com/example/todoapi/internal/config"
	"github.com/gorilla/mux"
	_ "modernc.org/sqlite"
)

type App struct {
	DB         DB
	Tokens     *TokenService
	CORSOrigin string
}

func main() {
	c, err := cfg.New()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	tokens, err := NewTokenService([]byte(c.JwtSecret))
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	var db DB
	switch c.DBAdapter {
	case "sqlite":
		s, err := NewSQLiteDB(c.SQLiteFile)
		if err != nil {
			log.Fatalf("sqlite init: %v", err)
		}
		db = s
	case "postgres":
		dsn, err := c.BuildPostgresDSN()
		if err != nil {
			log.Fatalf("postgres config error: %v", err)
		}

		log.Println("Applying database migrations...")
		if err := ApplyMigrations("./migrations", dsn); err != nil {
			log.Fatalf("migrations: %v", err)
		}

		p, err := NewPostgresDB(dsn)
		if err != nil {
			log.Fatalf("postgres init: %v", err)
		}
		db = p
		log.Println("Connected to PostgreSQL database")
	case "memory":
		log.Println("Using in-memory database (not recommended for production)")
		db = NewMemoryDB()
	default:
		log.Fatalf("unsupported DB_ADAPTER: %s (supported: postgres, sqlite, memory)", c.DBAdapter)
	}

	app := &App{DB: db, Tokens: tokens, CORSOrigin: c.CORSOrigin}
	r := app.Router()

	srv := &http.Server{Handler: r, Addr: ":" + c.Port, ReadTimeout: 5 * time.Second, WriteTimeout: 10 * time.Second}

	go func() {
		fmt.Println("Starting server on", c.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if closer, ok := app.DB.(interface{ close() error }); ok {
		_ = closer.close()
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown failed:%+v", err)
	}
	fmt.Println("Server exited properly")
}

// Router wires the HTTP surface. Auth endpoints are open; everything
// under /todos goes through BearerAuth.
func (a *App) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(SecurityHeaders)
	r.Use(a.Logging)
	r.Use(a.CORS)

	// Health check endpoints (no auth required)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if p, ok := a.DB.(interface{ ping() bool }); ok && !p.ping() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ready": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
	}).Methods("GET")

	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", a.HandleRegister).Methods("POST")
	auth.HandleFunc("/login", a.HandleLogin).Methods("POST")

	todos := r.PathPrefix("/todos").Subrouter()
	todos.Use(a.BearerAuth)
	todos.HandleFunc("", a.HandleListTodos).Methods("GET")
	todos.HandleFunc("", a.HandleCreateTodo).Methods("POST")
	todos.HandleFunc("/{id}", a.HandleUpdateTodo).Methods("PATCH")
	todos.HandleFunc("/{id}", a.HandleDeleteTodo).Methods("DELETE")

	return r
}
