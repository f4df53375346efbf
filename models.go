package main

import "time"

// User represents a registered account. Password holds the bcrypt hash,
// never plaintext; it is opaque to everything except auth.go.
type User struct {
	ID        int64
	Email     string
	Name      string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Todo is a to-do item owned by exactly one user.
type Todo struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      int64     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TodoPatch carries a partial update. Nil fields are left untouched.
type TodoPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}
