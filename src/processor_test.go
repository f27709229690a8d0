package bookforge

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opd-ai/bookforge/bookcompiler"
)

type recorder struct{ lines []string }

func (r *recorder) UpdateOutput(msg string) { r.lines = append(r.lines, msg) }

func TestDraftBook(t *testing.T) {
	client := &fakeClient{outline: `[{"title":"First","description":"one"},{"title":"Second","description":"two"}]`}
	rec := &recorder{}
	draft, err := DraftBook(context.Background(), NewGenerator(client, client, nil),
		OutlineRequest{Topic: "Gardens", NumChapters: 2}, "", "", "Pat", rec)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if draft.Title != "Gardens" || draft.Author != "Pat" {
		t.Fatalf("unexpected draft header: %+v", draft)
	}
	if len(draft.Chapters) != 2 || !strings.Contains(draft.Chapters[1], "Second") {
		t.Fatalf("unexpected chapters: %q", draft.Chapters)
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 model calls, got %d", client.calls)
	}
	if len(rec.lines) == 0 || rec.lines[len(rec.lines)-1] != "Draft complete" {
		t.Fatalf("unexpected progress: %q", rec.lines)
	}
}

func TestDraftBookStopsOnCancel(t *testing.T) {
	client := &fakeClient{outline: `[{"title":"First","description":"one"}]`}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DraftBook(ctx, NewGenerator(client, client, nil), OutlineRequest{Topic: "x"}, "", "", "", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSaveDraftRoundTrip(t *testing.T) {
	draft := Draft{
		Title:  "Gardens",
		Author: "Pat",
		Outline: []OutlineEntry{
			{Title: "First", Description: "one"},
			{Title: "Second", Description: "two"},
		},
		Chapters: []string{"alpha **bold**", "beta"},
	}
	dir := filepath.Join(t.TempDir(), "draft")
	if err := SaveToFiles(draft, dir); err != nil {
		t.Fatalf("save: %v", err)
	}
	book, err := bookcompiler.LoadBookDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(book.Chapters) != 2 || book.Chapters[0].Title != "First" || book.Chapters[1].Title != "Second" {
		t.Fatalf("unexpected chapters: %+v", book.Chapters)
	}
	if _, err := bookcompiler.NewBookCompiler(dir, nil).Compile(book, bookcompiler.FormatPDF); err != nil {
		t.Fatalf("compile saved draft: %v", err)
	}
}

func TestDraftBookPartialChapters(t *testing.T) {
	d := Draft{Outline: []OutlineEntry{{Title: "A"}, {Title: "B"}}, Chapters: []string{"only one"}}
	if got := d.Book(); len(got.Chapters) != 1 || got.Chapters[0].Title != "A" {
		t.Fatalf("unexpected book: %+v", got)
	}
}
