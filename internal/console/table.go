package console

import (
	"fmt"

	"github.com/knzHUB/midterm-project-inteprog-kinz/internal/model"
)

// rowFormat lays out ID(15) ISBN(15) Title(20) Authors(40) Edition(10)
// Publication(15) Category(15), left aligned. Longer values are not cut.
const rowFormat = "%-15s%-15s%-20s%-40s%-10s%-15s%-15s\n"

func (c *Console) writeTable(books []model.Book) {
	fmt.Fprintf(c.out, rowFormat, "ID", "ISBN", "Title", "Authors", "Edition", "Publication", "Category")
	for i := range books {
		b := &books[i]
		fmt.Fprintf(c.out, rowFormat,
			b.ID, b.ISBN, b.Title, b.AuthorsString(), b.Edition, b.PublicationYear, b.Category)
	}
}
