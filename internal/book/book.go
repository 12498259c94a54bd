package book

import (
	"errors"
	"time"
)

// ErrNotFound is the single denial for a book that does not exist or that
// belongs to another user. Callers must not be able to tell the two apart.
var ErrNotFound = errors.New("book not found or not owned")

// DenialMessage is what the detail view shows for ErrNotFound.
const DenialMessage = "The book was not found or you do not have permission to access the book."

// Book represents a book entity. AuthorID is the owning user and never changes.
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
