package book

import (
	"context"
)

// Service provides ownership-scoped access to books.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the books owned by userID. The result is never nil.
func (s *Service) List(ctx context.Context, userID string) ([]Book, error) {
	if userID == "" {
		return []Book{}, nil
	}
	books, err := s.repo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

// GetOwned returns the book with the given id if userID owns it.
// Missing and foreign books both yield ErrNotFound.
func (s *Service) GetOwned(ctx context.Context, userID string, id int64) (Book, error) {
	if userID == "" || id <= 0 {
		return Book{}, ErrNotFound
	}
	b, err := s.repo.GetByIDAndAuthor(ctx, id, userID)
	if err != nil {
		return Book{}, err
	}
	if b.AuthorID != userID {
		return Book{}, ErrNotFound
	}
	return b, nil
}
