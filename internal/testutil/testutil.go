package testutil

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/httpx"
	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/platform/logger"
	"bookshelf/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret"

// NewSQLiteDB opens a migrated SQLite database under t.TempDir().
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "bookshelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db, database.DialectSQLite, logger.Discard()))
	return db
}

// CreateUser inserts an active user with the given password.
func CreateUser(t *testing.T, db *sql.DB, username, password string) user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &user.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	require.NoError(t, user.NewSQLiteRepo(db).Create(context.Background(), u))
	return *u
}

// DeactivateUser flips is_active off for userID.
func DeactivateUser(t *testing.T, db *sql.DB, userID string) {
	t.Helper()
	_, err := db.Exec(`UPDATE users SET is_active = 0 WHERE id = ?`, userID)
	require.NoError(t, err)
}

// CreateBook inserts a book owned by authorID.
func CreateBook(t *testing.T, db *sql.DB, title, authorID string) book.Book {
	t.Helper()
	b := book.Book{Title: title, AuthorID: authorID, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	res, err := db.Exec(
		`INSERT INTO books (title, author_id, created_at) VALUES (?, ?, ?)`,
		title, authorID, b.CreatedAt,
	)
	require.NoError(t, err)
	b.ID, err = res.LastInsertId()
	require.NoError(t, err)
	return b
}

// GenerateTestToken generates a session token for testing
func GenerateTestToken(t *testing.T, secret, userID, username string) string {
	t.Helper()
	token, _, err := crypto.GenerateToken(secret, userID, username, time.Hour)
	require.NoError(t, err)
	return token
}

// GenerateExpiredToken generates an expired session token for testing
func GenerateExpiredToken(t *testing.T, secret, userID string) string {
	t.Helper()
	c := crypto.Claims{
		Sub: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "bookshelf",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// NewRequestAs builds a request whose context already carries the given identity,
// as Authenticate would have left it.
func NewRequestAs(method, path, userID, username string) *http.Request {
	r := httptest.NewRequest(method, path, nil)
	if userID == "" {
		return r
	}
	return r.WithContext(httpx.ContextWithUser(r.Context(), userID, username, ""))
}
