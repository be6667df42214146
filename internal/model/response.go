package model

import "time"

// APIResponse is the envelope of every API response body, errors
// included.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewSuccessResponse creates a successful API response.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Success: true,
		Data:    data,
	}
}

// NewErrorResponse creates an error API response.
func NewErrorResponse[T any](errMsg string) APIResponse[T] {
	return APIResponse[T]{
		Success: false,
		Error:   errMsg,
	}
}

// UpdateResult is the outcome of a partial update.
type UpdateResult struct {
	Book    Book           `json:"book"`
	Skipped []SkippedField `json:"skipped,omitempty"`
}

// CatalogEventType identifies a catalog mutation.
type CatalogEventType string

// Catalog event types.
const (
	EventBookAdded   CatalogEventType = "book_added"
	EventBookUpdated CatalogEventType = "book_updated"
	EventBookRemoved CatalogEventType = "book_removed"
)

// CatalogEvent describes a successful store mutation. Book holds the
// record after the change, or the removed record for EventBookRemoved.
type CatalogEvent struct {
	ID        string           `json:"id,omitempty"`
	Type      CatalogEventType `json:"type"`
	BookID    string           `json:"book_id"`
	Book      *Book            `json:"book,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewCatalogEvent creates an event for b stamped with the current time.
func NewCatalogEvent(t CatalogEventType, b Book) CatalogEvent {
	return CatalogEvent{
		Type:      t,
		BookID:    b.ID,
		Book:      &b,
		Timestamp: time.Now().UTC(),
	}
}
