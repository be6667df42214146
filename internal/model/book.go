// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidField is the parent of every field validation error.
var ErrInvalidField = errors.New("invalid field")

// Validation errors for Book.
var (
	ErrInvalidID       = fmt.Errorf("%w: id must be non-empty and alphanumeric", ErrInvalidField)
	ErrInvalidISBN     = fmt.Errorf("%w: isbn must contain exactly 10 or 13 digits or 'x'", ErrInvalidField)
	ErrInvalidYear     = fmt.Errorf("%w: publication year must be 4 digits between 1000 and 2100", ErrInvalidField)
	ErrEmptyTitle      = fmt.Errorf("%w: title cannot be empty", ErrInvalidField)
	ErrEmptyEdition    = fmt.Errorf("%w: edition cannot be empty", ErrInvalidField)
	ErrNoAuthors       = fmt.Errorf("%w: at least one author is required", ErrInvalidField)
	ErrEmptyAuthor     = fmt.Errorf("%w: author name cannot be empty", ErrInvalidField)
	ErrUnknownCategory = errors.New("unknown category")
)

// Book is a single catalog entry. ID is fixed at creation; every other
// field may change through a BookPatch.
type Book struct {
	ID              string   `json:"id"`
	ISBN            string   `json:"isbn"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors"`
	Edition         string   `json:"edition"`
	PublicationYear string   `json:"publication_year"`
	Category        Category `json:"category"`
}

// AuthorsString joins the authors in display order.
func (b *Book) AuthorsString() string {
	return strings.Join(b.Authors, ", ")
}

// Validate checks every field and rewrites Category to its canonical form.
func (b *Book) Validate() error {
	if !IsValidID(b.ID) {
		return ErrInvalidID
	}

	if !IsValidISBN(b.ISBN) {
		return ErrInvalidISBN
	}

	if b.Title == "" {
		return ErrEmptyTitle
	}

	if err := validateAuthors(b.Authors); err != nil {
		return err
	}

	if b.Edition == "" {
		return ErrEmptyEdition
	}

	if !IsValidYear(b.PublicationYear) {
		return ErrInvalidYear
	}

	category, err := NormalizeCategory(string(b.Category))
	if err != nil {
		return err
	}
	b.Category = category

	return nil
}

// Clone returns a copy that shares no memory with b.
func (b *Book) Clone() Book {
	c := *b
	if b.Authors != nil {
		c.Authors = make([]string, len(b.Authors))
		copy(c.Authors, b.Authors)
	}
	return c
}

func validateAuthors(authors []string) error {
	if len(authors) == 0 {
		return ErrNoAuthors
	}
	for _, a := range authors {
		if a == "" {
			return ErrEmptyAuthor
		}
	}
	return nil
}
