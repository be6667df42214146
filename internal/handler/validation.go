package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
)

// createBookRequest is the body of POST /api/v1/books.
type createBookRequest struct {
	ID              string   `json:"id" validate:"required,bookid"`
	ISBN            string   `json:"isbn" validate:"required,catalog_isbn"`
	Title           string   `json:"title" validate:"required"`
	Authors         []string `json:"authors" validate:"required,min=1,dive,required"`
	Edition         string   `json:"edition" validate:"required"`
	PublicationYear string   `json:"publication_year" validate:"required,pubyear"`
	Category        string   `json:"category" validate:"required,category"`
}

func (r *createBookRequest) toBook() *model.Book {
	return &model.Book{
		ID:              r.ID,
		ISBN:            r.ISBN,
		Title:           r.Title,
		Authors:         r.Authors,
		Edition:         r.Edition,
		PublicationYear: r.PublicationYear,
		Category:        model.Category(r.Category),
	}
}

// newValidator returns a validator that knows the catalog field rules.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]func(string) bool{
		"bookid":       model.IsValidID,
		"catalog_isbn": model.IsValidISBN,
		"pubyear":      model.IsValidYear,
		"category": func(s string) bool {
			_, err := model.NormalizeCategory(s)
			return err == nil
		},
	}
	for tag, check := range rules {
		check := check
		// Registration only fails for an empty tag or nil func.
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		})
	}

	return v
}

// describeValidation turns validator errors into one readable message.
func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required", "min":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "bookid":
			msgs = append(msgs, fmt.Sprintf("%s must be alphanumeric", field))
		case "catalog_isbn":
			msgs = append(msgs, fmt.Sprintf("%s must contain exactly 10 or 13 digits or 'x'", field))
		case "pubyear":
			msgs = append(msgs, fmt.Sprintf("%s must be a 4-digit year between %d and %d",
				field, model.MinPublicationYear, model.MaxPublicationYear))
		case "category":
			msgs = append(msgs, fmt.Sprintf("%s must be %s", field, model.CategoryNames(" or ")))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}

	return strings.Join(msgs, "; ")
}
