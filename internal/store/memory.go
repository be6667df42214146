package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
)

// Observer receives an event after every successful mutation.
type Observer func(model.CatalogEvent)

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithCapacity overrides DefaultCapacity. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// MemoryStore implements Store interface with a bounded in-memory slice.
type MemoryStore struct {
	mu        sync.RWMutex
	books     []model.Book
	capacity  int
	observers []Observer

	// delivery serializes observer calls in mutation order.
	delivery sync.Mutex
}

// NewMemoryStore creates a new, empty MemoryStore instance.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.books = make([]model.Book, 0, s.capacity)
	return s
}

// Add validates the book and appends a copy of it to the catalog. A full
// catalog rejects every book with ErrCapacityExceeded, invalid ones included.
func (s *MemoryStore) Add(ctx context.Context, book *model.Book) (*model.Book, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("add book: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	if len(s.books) >= s.capacity {
		s.mu.Unlock()
		return nil, ErrCapacityExceeded
	}
	if book == nil {
		s.mu.Unlock()
		return nil, ErrNilBook
	}

	newBook := book.Clone()
	if err := newBook.Validate(); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("add book: %w", err)
	}
	if s.indexOf(newBook.ID) >= 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, newBook.ID)
	}
	s.books = append(s.books, newBook)

	s.commit(model.EventBookAdded, newBook)

	out := newBook.Clone()
	return &out, nil
}

// FindByID retrieves a book by its id, ignoring case.
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*model.Book, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("find book: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false, nil
	}

	book := s.books[i].Clone()
	return &book, true, nil
}

// Update modifies an existing book in place. Invalid supplied fields are
// skipped and reported in the result.
func (s *MemoryStore) Update(ctx context.Context, id string, patch model.BookPatch) (*model.UpdateResult, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("update book: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	skipped := patch.ApplyTo(&s.books[i])
	updated := s.books[i].Clone()

	s.commit(model.EventBookUpdated, updated)

	return &model.UpdateResult{
		Book:    updated.Clone(),
		Skipped: skipped,
	}, nil
}

// Remove deletes a book and shifts the following books left by one.
func (s *MemoryStore) Remove(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("remove book: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := s.books[i]
	copy(s.books[i:], s.books[i+1:])
	s.books[len(s.books)-1] = model.Book{}
	s.books = s.books[:len(s.books)-1]

	s.commit(model.EventBookRemoved, removed)

	return nil
}

// List returns a snapshot of all books in insertion order.
func (s *MemoryStore) List(ctx context.Context) ([]model.Book, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list books: %w", ctx.Err())
	default:
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]model.Book, 0, len(s.books))
	for i := range s.books {
		books = append(books, s.books[i].Clone())
	}

	return books, nil
}

// ListByCategory returns the books whose category matches the normalized
// category, in insertion order.
func (s *MemoryStore) ListByCategory(ctx context.Context, category string) ([]model.Book, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("list books by category: %w", ctx.Err())
	default:
	}

	c, err := model.NormalizeCategory(category)
	if err != nil {
		return nil, fmt.Errorf("list books by category: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]model.Book, 0)
	for i := range s.books {
		if model.EqualFold(string(s.books[i].Category), string(c)) {
			books = append(books, s.books[i].Clone())
		}
	}

	return books, nil
}

// Subscribe registers fn to be called after each successful mutation.
// Observers run one at a time in mutation order, outside the store lock,
// and must not mutate the store.
func (s *MemoryStore) Subscribe(fn Observer) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Len returns the number of stored books.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// Capacity returns the maximum number of books.
func (s *MemoryStore) Capacity() int {
	return s.capacity
}

// indexOf returns the position of the first case-insensitive id match or -1.
// Callers must hold s.mu.
func (s *MemoryStore) indexOf(id string) int {
	for i := range s.books {
		if model.EqualFold(s.books[i].ID, id) {
			return i
		}
	}
	return -1
}

// commit releases the write lock held by the caller and runs the
// observers. The delivery lock is taken before the write lock is
// released, so events reach observers in mutation order.
func (s *MemoryStore) commit(t model.CatalogEventType, b model.Book) {
	s.delivery.Lock()
	observers := s.observers
	s.mu.Unlock()
	defer s.delivery.Unlock()

	for _, fn := range observers {
		fn(model.NewCatalogEvent(t, b.Clone()))
	}
}
