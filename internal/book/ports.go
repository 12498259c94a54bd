package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	// ListByAuthor returns every book owned by authorID.
	ListByAuthor(ctx context.Context, authorID string) ([]Book, error)
	// GetByIDAndAuthor returns the book only if it exists and is owned by
	// authorID, ErrNotFound otherwise.
	GetByIDAndAuthor(ctx context.Context, id int64, authorID string) (Book, error)
}
