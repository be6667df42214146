package model

// Field names a mutable Book field.
type Field string

// Mutable Book fields. ID is intentionally absent.
const (
	FieldISBN            Field = "isbn"
	FieldTitle           Field = "title"
	FieldAuthors         Field = "authors"
	FieldEdition         Field = "edition"
	FieldPublicationYear Field = "publication_year"
	FieldCategory        Field = "category"
)

// BookPatch carries a partial update. A nil pointer or nil slice leaves
// the field untouched.
type BookPatch struct {
	ISBN            *string  `json:"isbn,omitempty"`
	Title           *string  `json:"title,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	Edition         *string  `json:"edition,omitempty"`
	PublicationYear *string  `json:"publication_year,omitempty"`
	Category        *string  `json:"category,omitempty"`
}

// SkippedField reports a supplied value that failed validation and was
// not applied.
type SkippedField struct {
	Field  Field  `json:"field"`
	Reason string `json:"reason"`
}

// IsEmpty reports whether the patch supplies no field at all.
func (p *BookPatch) IsEmpty() bool {
	return p.ISBN == nil && p.Title == nil && p.Authors == nil &&
		p.Edition == nil && p.PublicationYear == nil && p.Category == nil
}

// ApplyTo writes every valid supplied field into b and returns the
// fields that were skipped.
func (p *BookPatch) ApplyTo(b *Book) []SkippedField {
	var skipped []SkippedField
	skip := func(f Field, err error) {
		skipped = append(skipped, SkippedField{Field: f, Reason: err.Error()})
	}

	if p.ISBN != nil {
		if IsValidISBN(*p.ISBN) {
			b.ISBN = *p.ISBN
		} else {
			skip(FieldISBN, ErrInvalidISBN)
		}
	}

	if p.Title != nil {
		if *p.Title != "" {
			b.Title = *p.Title
		} else {
			skip(FieldTitle, ErrEmptyTitle)
		}
	}

	if p.Authors != nil {
		if err := validateAuthors(p.Authors); err == nil {
			b.Authors = append([]string(nil), p.Authors...)
		} else {
			skip(FieldAuthors, err)
		}
	}

	if p.Edition != nil {
		if *p.Edition != "" {
			b.Edition = *p.Edition
		} else {
			skip(FieldEdition, ErrEmptyEdition)
		}
	}

	if p.PublicationYear != nil {
		if IsValidYear(*p.PublicationYear) {
			b.PublicationYear = *p.PublicationYear
		} else {
			skip(FieldPublicationYear, ErrInvalidYear)
		}
	}

	if p.Category != nil {
		if c, err := NormalizeCategory(*p.Category); err == nil {
			b.Category = c
		} else {
			skip(FieldCategory, err)
		}
	}

	return skipped
}
