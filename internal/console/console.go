// Package console implements the line-oriented catalog menu.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/store"
)

// Menu choices.
const (
	choiceAdd = iota + 1
	choiceEdit
	choiceSearch
	choiceDelete
	choiceByCategory
	choiceAll
	choiceExit
)

// lineResult is one line read from the input, or the read error.
type lineResult struct {
	line string
	err  error
}

// Console drives a Store from a text stream, one operation at a time.
type Console struct {
	store  store.Store
	in     *bufio.Reader
	out    io.Writer
	logger *zap.Logger

	// A single reader goroutine feeds lines so prompts can stop waiting
	// when the context ends.
	lines     chan lineResult
	quit      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a Console reading from in and writing to out.
func New(s store.Store, in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	return &Console{
		store:  s,
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
		lines:  make(chan lineResult),
		quit:   make(chan struct{}),
	}
}

// Run shows the menu until the user picks Exit, the input ends or ctx is
// done. A done context interrupts a pending prompt.
func (c *Console) Run(ctx context.Context) error {
	defer c.stopOnce.Do(func() { close(c.quit) })

	c.logger.Info("console session started", zap.Int("capacity", c.store.Capacity()))

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("console: %w", err)
		}

		choice, err := c.menuChoice(ctx)
		if err != nil {
			return c.finish(err)
		}

		switch choice {
		case choiceAdd:
			err = c.addBooks(ctx)
		case choiceEdit:
			err = c.editBook(ctx)
		case choiceSearch:
			err = c.searchBook(ctx)
		case choiceDelete:
			err = c.deleteBook(ctx)
		case choiceByCategory:
			err = c.viewByCategory(ctx)
		case choiceAll:
			err = c.viewAll(ctx)
		case choiceExit:
			c.println("Exiting Library Management System...")
			c.logger.Info("console session ended", zap.Int("books", c.store.Len()))
			return nil
		}

		if err != nil {
			return c.finish(err)
		}
	}
}

// finish turns end of input into a clean exit.
func (c *Console) finish(err error) error {
	if errors.Is(err, io.EOF) {
		c.logger.Info("console input closed", zap.Int("books", c.store.Len()))
		return nil
	}
	return err
}

func (c *Console) menuChoice(ctx context.Context) (int, error) {
	for {
		c.println("\n--- Library Management System ---")
		c.println("1 - Add Book")
		c.println("2 - Edit Book")
		c.println("3 - Search Book")
		c.println("4 - Delete Book")
		c.println("5 - View Books by Category")
		c.println("6 - View All Books")
		c.println("7 - Exit")
		c.print("Enter your choice (1-7): ")

		line, err := c.readLine(ctx)
		if err != nil {
			return 0, err
		}

		if len(line) == 1 && line[0] >= '1' && line[0] <= '7' {
			return int(line[0] - '0'), nil
		}
		c.println("Invalid choice! Please enter a single digit between 1 and 7.")
	}
}

// readLine returns the next input line without its line terminator.
// Leading and trailing whitespace is preserved.
func (c *Console) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("console: %w", err)
	}
	c.startOnce.Do(func() { go c.readLines() })

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("console: %w", ctx.Err())
	case r, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	}
}

// readLines reads the input until it fails or Run returns.
func (c *Console) readLines() {
	defer close(c.lines)

	for {
		line, err := c.in.ReadString('\n')
		var r lineResult
		switch {
		case err == nil:
			r.line = strings.TrimRight(line, "\r\n")
		case errors.Is(err, io.EOF) && line != "":
			r.line = strings.TrimRight(line, "\r")
		default:
			r.err = err
		}

		select {
		case c.lines <- r:
		case <-c.quit:
			return
		}
		if err != nil {
			return
		}
	}
}

func (c *Console) print(s string) {
	fmt.Fprint(c.out, s)
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) pressEnter(ctx context.Context) error {
	c.print("Press Enter to Continue...")
	_, err := c.readLine(ctx)
	return err
}
