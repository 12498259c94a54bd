package book

import (
	"context"
	"database/sql"
	"errors"
)

// SQLiteRepo serves books from a SQLite database opened with modernc.org/sqlite.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

func (r *SQLiteRepo) ListByAuthor(ctx context.Context, authorID string) ([]Book, error) {
	const query = `
		SELECT id, title, author_id, created_at
		FROM books
		WHERE author_id = ?
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.AuthorID, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) GetByIDAndAuthor(ctx context.Context, id int64, authorID string) (Book, error) {
	const query = `
		SELECT id, title, author_id, created_at
		FROM books
		WHERE id = ? AND author_id = ?
		LIMIT 1`
	var b Book
	err := r.db.QueryRowContext(ctx, query, id, authorID).Scan(&b.ID, &b.Title, &b.AuthorID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}
