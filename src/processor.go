package bookforge

import (
	"context"
	"fmt"
)

// Progressor receives human-readable status lines from long-running work.
type Progressor interface {
	UpdateOutput(message string)
}

type nullProgressor struct{}

func (nullProgressor) UpdateOutput(string) {}

func orNull(p Progressor) Progressor {
	if p == nil {
		return nullProgressor{}
	}
	return p
}

// DraftBook generates an outline for req and then writes every chapter in
// order. A chapter that fails aborts the draft; the chapters written so far
// are returned with the error.
func DraftBook(ctx context.Context, g *Generator, req OutlineRequest, title, subtitle, author string, p Progressor) (Draft, error) {
	pr := orNull(p)
	req = req.normalize()
	draft := Draft{Title: title, Subtitle: subtitle, Author: author}
	if draft.Title == "" {
		draft.Title = req.Topic
	}

	pr.UpdateOutput(fmt.Sprintf("Generating outline for %q (%d chapters)", req.Topic, req.NumChapters))
	outline, err := g.GenerateOutline(ctx, req)
	if err != nil {
		return draft, err
	}
	draft.Outline = outline
	pr.UpdateOutput(fmt.Sprintf("Outline ready: %d chapters", len(outline)))

	for i, entry := range outline {
		if err := ctx.Err(); err != nil {
			return draft, err
		}
		pr.UpdateOutput(fmt.Sprintf("Working on: %s (%d/%d)", entry.Title, i+1, len(outline)))
		content, err := g.GenerateChapterContent(ctx, ChapterRequest{
			ChapterTitle:       entry.Title,
			ChapterDescription: entry.Description,
			Style:              req.Style,
		})
		if err != nil {
			return draft, fmt.Errorf("drafting chapter %d: %w", i+1, err)
		}
		draft.Chapters = append(draft.Chapters, content)
	}
	pr.UpdateOutput("Draft complete")
	return draft, nil
}
