package main

import (
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"
)

// Sentinel errors surfaced by the storage adapters. Everything else that
// comes out of a driver is treated as an internal failure by the handlers.
var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrTodoNotFound   = errors.New("todo not found")
)

// DB is the storage contract. Lookup methods return (nil, nil) when the
// record is absent; callers must nil-check the result, never just the
// error. The auth guard depends on that nil to reject tokens for
// deleted users.
type DB interface {
	Init() error
	// User operations
	CreateUser(name, email, passwordHash string) (*User, error)
	GetUserByEmail(email string) (*User, error)
	GetUserByID(id int64) (*User, error)
	// Todo operations, all scoped to the owning user
	CreateTodo(userID int64, title, description string) (*Todo, error)
	GetTodosByUserID(userID int64) ([]*Todo, error)
	GetTodoByID(id, userID int64) (*Todo, error)
	UpdateTodo(id, userID int64, patch TodoPatch) (*Todo, error)
	DeleteTodo(id, userID int64) error
}

// Memory DB, used in tests and for local development.
type MemDB struct {
	mu      sync.Mutex
	users   map[string]*User
	todos   map[int64]*Todo
	userSeq int64
	todoSeq int64
}

func NewMemoryDB() *MemDB {
	return &MemDB{users: map[string]*User{}, todos: map[int64]*Todo{}, userSeq: 1, todoSeq: 1}
}

func (m *MemDB) Init() error { return nil }

func (m *MemDB) CreateUser(name, email, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; ok {
		return nil, ErrDuplicateEmail
	}
	now := time.Now().UTC()
	u := &User{ID: m.userSeq, Email: email, Name: name, Password: passwordHash, CreatedAt: now, UpdatedAt: now}
	m.userSeq++
	m.users[email] = u
	return u, nil
}

func (m *MemDB) GetUserByEmail(email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, nil
}

func (m *MemDB) GetUserByID(id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// DeleteUser exists for tests that exercise the deleted-user rejection
// path; no HTTP operation deletes users.
func (m *MemDB) DeleteUser(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, u := range m.users {
		if u.ID == id {
			delete(m.users, email)
			return
		}
	}
}

func (m *MemDB) CreateTodo(userID int64, title, description string) (*Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	t := &Todo{ID: m.todoSeq, Title: title, Description: description, UserID: userID, CreatedAt: now, UpdatedAt: now}
	m.todoSeq++
	m.todos[t.ID] = t
	return t, nil
}

func (m *MemDB) GetTodosByUserID(userID int64) ([]*Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*Todo{}
	for _, t := range m.todos {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MemDB) GetTodoByID(id, userID int64) (*Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.todos[id]; ok && t.UserID == userID {
		return t, nil
	}
	return nil, nil
}

func (m *MemDB) UpdateTodo(id, userID int64, patch TodoPatch) (*Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.todos[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	t.UpdatedAt = time.Now().UTC()
	return t, nil
}

func (m *MemDB) DeleteTodo(id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.todos[id]
	if !ok || t.UserID != userID {
		return ErrTodoNotFound
	}
	delete(m.todos, id)
	return nil
}

func (m *MemDB) close() error { return nil }
func (m *MemDB) ping() bool   { return true }

// SQLite DB
type SQLiteDB struct {
	db   *sql.DB
	path string
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	d, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &SQLiteDB{db: d, path: path}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteDB) Init() error {
	// password is TEXT: bcrypt output is 60 bytes and must never be truncated.
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			password TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS todos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			user_id INTEGER NOT NULL REFERENCES users(id),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

const sqliteTimeLayout = "2006-01-02 15:04:05"

func parseSQLiteTime(s string) time.Time {
	t, _ := time.Parse(sqliteTimeLayout, s)
	return t
}

func (s *SQLiteDB) CreateUser(name, email, passwordHash string) (*User, error) {
	res, err := s.db.Exec(`INSERT INTO users(email,name,password,created_at,updated_at) VALUES(?,?,?,datetime('now'),datetime('now'))`, email, name, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	id, _ := res.LastInsertId()
	return &User{ID: id, Email: email, Name: name, Password: passwordHash}, nil
}

func (s *SQLiteDB) GetUserByEmail(email string) (*User, error) {
	row := s.db.QueryRow(`SELECT id,email,name,password,created_at,updated_at FROM users WHERE email = ?`, email)
	return scanSQLiteUser(row)
}

func (s *SQLiteDB) GetUserByID(id int64) (*User, error) {
	row := s.db.QueryRow(`SELECT id,email,name,password,created_at,updated_at FROM users WHERE id = ?`, id)
	return scanSQLiteUser(row)
}

func scanSQLiteUser(row *sql.Row) (*User, error) {
	var u User
	var created, updated string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Password, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	u.CreatedAt = parseSQLiteTime(created)
	u.UpdatedAt = parseSQLiteTime(updated)
	return &u, nil
}

func (s *SQLiteDB) CreateTodo(userID int64, title, description string) (*Todo, error) {
	res, err := s.db.Exec(`INSERT INTO todos(title,description,user_id,created_at,updated_at) VALUES(?,?,?,datetime('now'),datetime('now'))`, title, description, userID)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetTodoByID(id, userID)
}

func (s *SQLiteDB) GetTodosByUserID(userID int64) ([]*Todo, error) {
	rows, err := s.db.Query(`SELECT id,title,description,user_id,created_at,updated_at FROM todos WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	todos := []*Todo{}
	for rows.Next() {
		var t Todo
		var created, updated string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.UserID, &created, &updated); err != nil {
			return nil, err
		}
		t.CreatedAt = parseSQLiteTime(created)
		t.UpdatedAt = parseSQLiteTime(updated)
		todos = append(todos, &t)
	}
	return todos, rows.Err()
}

func (s *SQLiteDB) GetTodoByID(id, userID int64) (*Todo, error) {
	row := s.db.QueryRow(`SELECT id,title,description,user_id,created_at,updated_at FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	var t Todo
	var created, updated string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.UserID, &created, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t.CreatedAt = parseSQLiteTime(created)
	t.UpdatedAt = parseSQLiteTime(updated)
	return &t, nil
}

func (s *SQLiteDB) UpdateTodo(id, userID int64, patch TodoPatch) (*Todo, error) {
	existing, err := s.GetTodoByID(id, userID)
	if err != nil || existing == nil {
		return nil, err
	}
	title := existing.Title
	description := existing.Description
	if patch.Title != nil {
		title = *patch.Title
	}
	if patch.Description != nil {
		description = *patch.Description
	}
	if _, err := s.db.Exec(`UPDATE todos SET title = ?, description = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?`, title, description, id, userID); err != nil {
		return nil, err
	}
	return s.GetTodoByID(id, userID)
}

func (s *SQLiteDB) DeleteTodo(id, userID int64) error {
	res, err := s.db.Exec(`DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (s *SQLiteDB) close() error { return s.db.Close() }
func (s *SQLiteDB) ping() bool   { return s.db.Ping() == nil }
