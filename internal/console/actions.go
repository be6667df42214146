package console

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/store"
)

// skipMessages explains a skipped field during edit. ISBN and year
// messages depend on the rejected value, see skipMessage.
var skipMessages = map[model.Field]string{
	model.FieldTitle:    "Title cannot be empty. Skipping Title update.",
	model.FieldAuthors:  "Authors cannot be empty. Skipping Authors update.",
	model.FieldEdition:  "Edition cannot be empty. Skipping Edition update.",
	model.FieldCategory: "Category not found! Skipping Category update.",
}

func (c *Console) addBooks(ctx context.Context) error {
	for {
		if c.store.Len() >= c.store.Capacity() {
			c.println("Library is full. Cannot add more books.")
			return nil
		}

		book, err := c.readNewBook(ctx)
		if err != nil {
			return err
		}

		added, err := c.store.Add(ctx, book)
		switch {
		case errors.Is(err, store.ErrCapacityExceeded):
			c.println("Library is full. Cannot add more books.")
			return nil
		case errors.Is(err, store.ErrDuplicateID):
			c.println("Duplicate ID! Book was not added.")
		case err != nil:
			c.logger.Warn("add book rejected", zap.String("id", book.ID), zap.Error(err))
			c.println(fmt.Sprintf("Book was not added: %v", err))
		default:
			c.logger.Debug("book added", zap.String("id", added.ID), zap.String("category", added.Category.String()))
			c.println("Book added successfully!")
		}

		again, err := c.promptYesNo(ctx, "Would you like to add another book? (yes/no): ")
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}

// readNewBook collects a complete record in the order the menu asks for it.
func (c *Console) readNewBook(ctx context.Context) (*model.Book, error) {
	category, err := c.promptCategory(ctx)
	if err != nil {
		return nil, err
	}
	id, err := c.promptNewID(ctx)
	if err != nil {
		return nil, err
	}
	isbn, err := c.promptISBN(ctx)
	if err != nil {
		return nil, err
	}
	title, err := c.prompt(ctx, "Enter Title: ", false)
	if err != nil {
		return nil, err
	}
	authors, err := c.promptAuthors(ctx)
	if err != nil {
		return nil, err
	}
	edition, err := c.prompt(ctx, "Enter Edition: ", false)
	if err != nil {
		return nil, err
	}
	year, err := c.promptYear(ctx)
	if err != nil {
		return nil, err
	}

	return &model.Book{
		ID:              id,
		ISBN:            isbn,
		Title:           title,
		Authors:         authors,
		Edition:         edition,
		PublicationYear: year,
		Category:        category,
	}, nil
}

// findLoop asks for an id until a book is found or the user gives up.
// It returns nil when the user gives up.
func (c *Console) findLoop(ctx context.Context) (*model.Book, error) {
	for {
		id, err := c.promptSearchID(ctx)
		if err != nil {
			return nil, err
		}

		book, ok, err := c.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			return book, nil
		}

		c.println("Book not found!")
		again, err := c.promptYesNo(ctx, "Do you want to try again? (yes/no): ")
		if err != nil {
			return nil, err
		}
		if !again {
			return nil, nil
		}
	}
}

func (c *Console) editBook(ctx context.Context) error {
	book, err := c.findLoop(ctx)
	if err != nil || book == nil {
		return err
	}

	patch, err := c.readPatch(ctx)
	if err != nil {
		return err
	}

	result, err := c.store.Update(ctx, book.ID, *patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.println("Book not found!")
			return nil
		}
		return err
	}

	for _, s := range result.Skipped {
		c.println(skipMessage(s.Field, patch))
	}
	if patch.Category == nil {
		c.println("Book category is not updated.")
	}

	c.logger.Debug("book edited", zap.String("id", result.Book.ID), zap.Int("skipped", len(result.Skipped)))
	c.println("Book edited successfully!")
	return nil
}

// skipMessage explains why field was left unchanged.
func skipMessage(field model.Field, patch *model.BookPatch) string {
	switch {
	case field == model.FieldISBN && patch.ISBN != nil:
		if !isDigitsOrX(*patch.ISBN) {
			return "Invalid ISBN! ISBN must contain only digits and 'x'. Skipping ISBN update."
		}
		return "Invalid ISBN! ISBN must contain exactly 10 or 13 characters. Skipping ISBN update."
	case field == model.FieldPublicationYear && patch.PublicationYear != nil:
		return yearProblem(*patch.PublicationYear) + " Skipping Publication update."
	}
	return skipMessages[field]
}

// readPatch asks for each mutable field. Blank answers leave the field alone.
func (c *Console) readPatch(ctx context.Context) (*model.BookPatch, error) {
	var patch model.BookPatch

	isbn, err := c.prompt(ctx, "Enter new ISBN (or press Enter to skip): ", true)
	if err != nil {
		return nil, err
	}
	if isbn != "" {
		patch.ISBN = &isbn
	}

	title, err := c.prompt(ctx, "Enter new Title (or press Enter to skip): ", true)
	if err != nil {
		return nil, err
	}
	if title != "" {
		patch.Title = &title
	}

	c.print("Update authors? ")
	updateAuthors, err := c.promptYesNo(ctx, "(yes/no): ")
	if err != nil {
		return nil, err
	}
	if updateAuthors {
		if patch.Authors, err = c.promptAuthors(ctx); err != nil {
			return nil, err
		}
	}

	edition, err := c.prompt(ctx, "Enter new Edition (or press Enter to skip): ", true)
	if err != nil {
		return nil, err
	}
	if edition != "" {
		patch.Edition = &edition
	}

	year, err := c.prompt(ctx, "Enter new Publication Year (or press Enter to skip): ", true)
	if err != nil {
		return nil, err
	}
	if year != "" {
		patch.PublicationYear = &year
	}

	c.print("Update category? ")
	updateCategory, err := c.promptYesNo(ctx, "(yes/no): ")
	if err != nil {
		return nil, err
	}
	if updateCategory {
		category, err := c.promptCategory(ctx)
		if err != nil {
			return nil, err
		}
		s := category.String()
		patch.Category = &s
	}

	return &patch, nil
}

func (c *Console) searchBook(ctx context.Context) error {
	book, err := c.findLoop(ctx)
	if err != nil || book == nil {
		return err
	}

	c.println("\n--- Book Details ---")
	c.writeTable([]model.Book{*book})
	return nil
}

func (c *Console) deleteBook(ctx context.Context) error {
	book, err := c.findLoop(ctx)
	if err != nil || book == nil {
		return err
	}

	c.println("\n--- Book Details ---")
	c.writeTable([]model.Book{*book})

	confirm, err := c.promptYesNo(ctx, "Do you want to delete this book? (yes/no): ")
	if err != nil || !confirm {
		return err
	}

	if err := c.store.Remove(ctx, book.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.println("Book not found!")
			return nil
		}
		return err
	}

	c.logger.Debug("book deleted", zap.String("id", book.ID))
	c.println("Book deleted successfully!")
	return nil
}

func (c *Console) viewByCategory(ctx context.Context) error {
	category, err := c.promptCategory(ctx)
	if err != nil {
		return err
	}

	books, err := c.store.ListByCategory(ctx, category.String())
	if err != nil {
		return err
	}

	c.println(fmt.Sprintf("\n--- Books in %s Category ---", category))
	c.writeTable(books)
	if len(books) == 0 {
		c.println("No books found in this category.")
	}

	return c.pressEnter(ctx)
}

func (c *Console) viewAll(ctx context.Context) error {
	books, err := c.store.List(ctx)
	if err != nil {
		return err
	}

	if len(books) == 0 {
		c.println("No books in the library.")
		return c.pressEnter(ctx)
	}

	c.println("\n--- All Books ---")
	c.writeTable(books)
	return c.pressEnter(ctx)
}
