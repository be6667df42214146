// Package store provides data storage interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
)

// DefaultCapacity is the maximum number of books a catalog holds.
const DefaultCapacity = 100

// Store errors.
var (
	ErrNotFound         = errors.New("book not found")
	ErrDuplicateID      = errors.New("book id already exists")
	ErrCapacityExceeded = errors.New("catalog is full")
	ErrNilBook          = errors.New("book cannot be nil")
)

// Store defines the catalog operations. Implementations keep insertion
// order and compare ids case-insensitively.
type Store interface {
	// Add validates book and appends a copy of it.
	Add(ctx context.Context, book *model.Book) (*model.Book, error)

	// FindByID returns the first book whose id matches. A miss is not an error.
	FindByID(ctx context.Context, id string) (*model.Book, bool, error)

	// Update applies the valid fields of patch to the book with the given id.
	Update(ctx context.Context, id string, patch model.BookPatch) (*model.UpdateResult, error)

	// Remove deletes the book with the given id, keeping the order of the rest.
	Remove(ctx context.Context, id string) error

	// List returns all books in insertion order.
	List(ctx context.Context) ([]model.Book, error)

	// ListByCategory returns the books of one category in insertion order.
	ListByCategory(ctx context.Context, category string) ([]model.Book, error)

	// Len returns the number of stored books.
	Len() int

	// Capacity returns the maximum number of books.
	Capacity() int
}
