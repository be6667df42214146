package model

import (
	"fmt"
	"strings"
)

// Category is one of the canonical catalog categories.
type Category string

// Canonical categories.
const (
	CategoryFiction    Category = "Fiction"
	CategoryNonFiction Category = "Non-fiction"
)

// Categories lists the canonical categories in menu order.
var Categories = []Category{CategoryFiction, CategoryNonFiction}

// CategoryNames joins the canonical categories with sep, for prompts and
// error messages.
func CategoryNames(sep string) string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, sep)
}

// categoryAliases maps lowercased input to a canonical category.
var categoryAliases = map[string]Category{
	"fiction":     CategoryFiction,
	"non-fiction": CategoryNonFiction,
	"non fiction": CategoryNonFiction,
	"nonfiction":  CategoryNonFiction,
}

// NormalizeCategory maps user input to its canonical category. Input is
// trimmed of spaces and tabs and matched case-insensitively.
func NormalizeCategory(s string) (Category, error) {
	key := strings.ToLower(TrimBlanks(s))
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// String returns the canonical spelling.
func (c Category) String() string {
	return string(c)
}
