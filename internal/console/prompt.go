package console

import (
	"context"
	"fmt"
	"strconv"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
)

// prompt writes text and returns the reply trimmed of spaces and tabs.
// Empty replies are accepted only when allowEmpty is set.
func (c *Console) prompt(ctx context.Context, text string, allowEmpty bool) (string, error) {
	for {
		c.print(text)
		line, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}

		line = model.TrimBlanks(line)
		if line != "" || allowEmpty {
			return line, nil
		}
		c.println("Input cannot be empty. Please try again.")
	}
}

func (c *Console) promptYesNo(ctx context.Context, text string) (bool, error) {
	for {
		answer, err := c.prompt(ctx, text, false)
		if err != nil {
			return false, err
		}

		switch {
		case model.EqualFold(answer, "yes"), model.EqualFold(answer, "y"):
			return true, nil
		case model.EqualFold(answer, "no"), model.EqualFold(answer, "n"):
			return false, nil
		}
		c.println("Invalid input. Please enter 'yes' or 'no'.")
	}
}

func (c *Console) promptCategory(ctx context.Context) (model.Category, error) {
	for {
		answer, err := c.prompt(ctx, "Enter Book Category ("+model.CategoryNames("/")+"): ", false)
		if err != nil {
			return "", err
		}

		category, err := model.NormalizeCategory(answer)
		if err == nil {
			return category, nil
		}
		c.println("Category not found! Please enter a valid category.")
	}
}

// promptNewID asks for an id that is well formed and not yet in the store.
func (c *Console) promptNewID(ctx context.Context) (string, error) {
	for {
		id, err := c.prompt(ctx, "Enter Book ID: ", false)
		if err != nil {
			return "", err
		}

		if !model.IsValidID(id) {
			c.println("Invalid ID! ID must be alphanumeric.")
			continue
		}

		_, exists, err := c.store.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		if exists {
			c.println("Duplicate ID! Please enter a unique ID.")
			continue
		}

		return id, nil
	}
}

func (c *Console) promptSearchID(ctx context.Context) (string, error) {
	for {
		c.print("Enter Book ID to search: ")
		line, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}

		id := model.TrimBlanks(line)
		if id == "" {
			c.println("ID cannot be empty. Please try again.")
			continue
		}
		if !model.IsValidID(id) {
			c.println("Invalid ID! ID must contain only alphanumeric characters (no spaces or special characters).")
			continue
		}

		return id, nil
	}
}

func (c *Console) promptISBN(ctx context.Context) (string, error) {
	for {
		c.print("Enter ISBN (10 or 13 digits, 'x' allowed): ")
		line, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}

		isbn := model.TrimBlanks(line)
		if isbn == "" {
			c.println("ISBN cannot be empty. Please try again.")
			continue
		}
		if msg := isbnProblem(isbn); msg != "" {
			c.println(msg)
			continue
		}

		return isbn, nil
	}
}

func (c *Console) promptYear(ctx context.Context) (string, error) {
	for {
		year, err := c.prompt(ctx, "Enter Publication Year (4 digits): ", false)
		if err != nil {
			return "", err
		}

		if msg := yearProblem(year); msg != "" {
			c.println(msg)
			continue
		}

		return year, nil
	}
}

func (c *Console) promptAuthors(ctx context.Context) ([]string, error) {
	var count int
	for {
		answer, err := c.prompt(ctx, "Enter the number of authors: ", false)
		if err != nil {
			return nil, err
		}

		n, err := strconv.Atoi(answer)
		if err != nil || !isDigits(answer) {
			c.println("Invalid input! Please enter a valid number.")
			continue
		}
		if n <= 0 {
			c.println("Number of authors must be positive. Please try again.")
			continue
		}

		count = n
		break
	}

	authors := make([]string, 0, count)
	for i := 0; i < count; i++ {
		author, err := c.prompt(ctx, fmt.Sprintf("Enter Author %d: ", i+1), false)
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}

	return authors, nil
}

// isbnProblem explains why s is not an ISBN, or returns "".
func isbnProblem(s string) string {
	if !isDigitsOrX(s) {
		return "Invalid ISBN! ISBN must contain only digits and 'x'."
	}
	if !model.IsValidISBN(s) {
		return "Invalid ISBN! ISBN must contain exactly 10 or 13 characters (digits and 'x')."
	}
	return ""
}

// yearProblem explains why s is not a publication year, or returns "".
func yearProblem(s string) string {
	if len(s) != 4 || !isDigits(s) {
		return "Invalid publication year! Publication must be a 4-digit year."
	}
	if !model.IsValidYear(s) {
		return fmt.Sprintf("Invalid year! Year must be between %d and %d.",
			model.MinPublicationYear, model.MaxPublicationYear)
	}
	return ""
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isDigitsOrX(s string) bool {
	for i := 0; i < len(s); i++ {
		if (s[i] < '0' || s[i] > '9') && s[i] != 'x' && s[i] != 'X' {
			return false
		}
	}
	return true
}
