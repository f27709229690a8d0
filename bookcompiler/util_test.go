package bookcompiler

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFilename(t *testing.T) {
	cases := []struct{ title, base string }{
		{"My Book", "My_Book"},
		{"Über: Part 2", "_ber__Part_2"},
		{"plain", "plain"},
		{"", ""},
		{"a/b\\c", "a_b_c"},
	}
	for _, c := range cases {
		if got := Filename(c.title, FormatPDF); got != c.base+".pdf" {
			t.Fatalf("Filename(%q): got %q want %q", c.title, got, c.base+".pdf")
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"pdf": FormatPDF, "PDF": FormatPDF, "document": FormatDOCX, "docx": FormatDOCX, " word ": FormatDOCX} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("epub"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestChapterTitleFallback(t *testing.T) {
	if got := chapterTitle("  ", 2); got != "Chapter 3" {
		t.Fatalf("got %q", got)
	}
	if got := chapterTitle("Named", 0); got != "Named" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveCover(t *testing.T) {
	path, err := ResolveCover("/uploads/x.png", "/srv/data")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if want := filepath.Join("/srv/data", "uploads", "x.png"); path != want {
		t.Fatalf("got %q want %q", path, want)
	}
	for _, stored := range []string{"", "   ", "https://i.pravatar.cc/150?u=1"} {
		if _, err := ResolveCover(stored, "/srv/data"); !errors.Is(err, ErrNoCover) {
			t.Fatalf("%q: expected ErrNoCover, got %v", stored, err)
		}
	}
}

func TestFitKeepsAspect(t *testing.T) {
	w, h := fit(800, 400, 400, 550)
	if w != 400 || h != 200 {
		t.Fatalf("got %vx%v", w, h)
	}
	w, h = fit(100, 1000, 400, 500)
	if w != 50 || h != 500 {
		t.Fatalf("got %vx%v", w, h)
	}
}
