package bookforge

import (
	"fmt"

	"github.com/opd-ai/bookforge/bookcompiler"
)

// Book converts a draft into the compiler's book snapshot. Chapters the
// draft never reached are left out.
func (d Draft) Book() bookcompiler.Book {
	book := bookcompiler.Book{Title: d.Title, Subtitle: d.Subtitle, Author: d.Author}
	for i, content := range d.Chapters {
		title := ""
		if i < len(d.Outline) {
			title = d.Outline[i].Title
		}
		book.Chapters = append(book.Chapters, bookcompiler.Chapter{Title: title, Content: content})
	}
	return book
}

// SaveToFiles writes the draft as a book directory that the export command
// can compile.
func SaveToFiles(d Draft, outputDir string) error {
	descriptions := make([]string, 0, len(d.Outline))
	for _, entry := range d.Outline {
		descriptions = append(descriptions, entry.Description)
	}
	if err := bookcompiler.SaveBookDir(outputDir, d.Book(), descriptions); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}
