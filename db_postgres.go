package main

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type PostgresDB struct {
	db  *sql.DB
	dsn string
}

func NewPostgresDB(dsn string) (*PostgresDB, error) {
	d, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	p := &PostgresDB{db: d, dsn: dsn}
	if err := p.Init(); err != nil {
		d.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresDB) Init() error {
	// rely on migrations to create tables; just verify connectivity
	return p.db.Ping()
}

// isUniqueViolation reports whether err is the unique_violation class
// (duplicate email on users.email).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (p *PostgresDB) CreateUser(name, email, passwordHash string) (*User, error) {
	var u User
	err := p.db.QueryRow(
		`INSERT INTO users(email,name,password,created_at,updated_at) VALUES($1,$2,$3,now(),now()) RETURNING id,created_at,updated_at`,
		email, name, passwordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	u.Email = email
	u.Name = name
	u.Password = passwordHash
	return &u, nil
}

func (p *PostgresDB) GetUserByEmail(email string) (*User, error) {
	row := p.db.QueryRow(`SELECT id,email,name,password,created_at,updated_at FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (p *PostgresDB) GetUserByID(id int64) (*User, error) {
	row := p.db.QueryRow(`SELECT id,email,name,password,created_at,updated_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (p *PostgresDB) CreateTodo(userID int64, title, description string) (*Todo, error) {
	var t Todo
	err := p.db.QueryRow(
		`INSERT INTO todos(title,description,user_id,created_at,updated_at) VALUES($1,$2,$3,now(),now()) RETURNING id,created_at,updated_at`,
		title, description, userID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Title = title
	t.Description = description
	t.UserID = userID
	return &t, nil
}

func (p *PostgresDB) GetTodosByUserID(userID int64) ([]*Todo, error) {
	rows, err := p.db.Query(`SELECT id,title,description,user_id,created_at,updated_at FROM todos WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	todos := []*Todo{}
	for rows.Next() {
		var t Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, &t)
	}
	return todos, rows.Err()
}

func (p *PostgresDB) GetTodoByID(id, userID int64) (*Todo, error) {
	row := p.db.QueryRow(`SELECT id,title,description,user_id,created_at,updated_at FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	var t Todo
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (p *PostgresDB) UpdateTodo(id, userID int64, patch TodoPatch) (*Todo, error) {
	row := p.db.QueryRow(
		`UPDATE todos SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id,title,description,user_id,created_at,updated_at`,
		id, userID, patch.Title, patch.Description,
	)
	var t Todo
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (p *PostgresDB) DeleteTodo(id, userID int64) error {
	res, err := p.db.Exec(`DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (p *PostgresDB) close() error { return p.db.Close() }
func (p *PostgresDB) ping() bool   { return p.db.Ping() == nil }
