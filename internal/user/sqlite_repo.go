package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

// Create assigns a fresh UUID since SQLite has no generator for it.
func (r *SQLiteRepo) Create(ctx context.Context, u *User) error {
	const query = `
	INSERT INTO users (id, username, email, password_hash, is_active, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	id := uuid.NewString()
	createdAt := time.Now().UTC().Truncate(time.Second)
	_, err := r.db.ExecContext(ctx, query, id, u.Username, u.Email, u.PasswordHash, u.IsActive, createdAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return err
	}
	u.ID = id
	u.CreatedAt = createdAt
	return nil
}

func (r *SQLiteRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	const query = `
	SELECT id, username, email, password_hash, is_active, created_at
	FROM users
	WHERE username = ?
	LIMIT 1
	`
	return r.getOne(ctx, query, username)
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `
	SELECT id, username, email, password_hash, is_active, created_at
	FROM users
	WHERE id = ?
	LIMIT 1
	`
	return r.getOne(ctx, query, id)
}

func (r *SQLiteRepo) getOne(ctx context.Context, query string, arg string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}
