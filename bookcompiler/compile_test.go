package bookcompiler

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opd-ai/bookforge/logger"
)

func sampleBook() Book {
	return Book{
		ID:       "b1",
		Title:    "My Book!",
		Author:   "Ann Writer",
		Subtitle: "A Tale",
		Chapters: []Chapter{
			{Title: "One", Content: "# Start\n\nSome **bold** and *italic* text.\n\n1. First\n2. Second"},
			{Title: "Two", Content: "> a quote\n\n```\ncode\n```\n\n---\n"},
			{Title: "", Content: "- loose item\n"},
		},
	}
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("opening docx: %v", err)
	}
	parts := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		parts[f.Name] = string(b)
	}
	return parts
}

func writePNG(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 40, 60))
	for x := 0; x < 40; x++ {
		img.SetGray(x, x, color.Gray{Y: 200})
	}
	if err := os.MkdirAll(filepath.Join(dir, "uploads"), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(dir, "uploads", name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestCompileDOCX(t *testing.T) {
	bc := NewBookCompiler(t.TempDir(), logger.NewNop())
	res, err := bc.Compile(sampleBook(), FormatDOCX)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !bytes.HasPrefix(res.Data, []byte("PK")) {
		t.Fatalf("docx is not a zip archive")
	}
	if res.Filename != "My_Book_.docx" {
		t.Fatalf("filename: got %q", res.Filename)
	}
	if res.MimeType != MimeType(FormatDOCX) {
		t.Fatalf("mime type: got %q", res.MimeType)
	}

	parts := readZip(t, res.Data)
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml", "word/_rels/document.xml.rels"} {
		if _, ok := parts[name]; !ok {
			t.Fatalf("missing part %s", name)
		}
	}
	doc := parts["word/document.xml"]
	for _, want := range []string{"My Book!", "by Ann Writer", "A Tale", "One", "Chapter 3", "bold", "1. ", "• ", "a quote", "code"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document.xml missing %q", want)
		}
	}
	for name := range parts {
		if strings.HasPrefix(name, "word/media/") {
			t.Fatalf("unexpected media part %s without a cover", name)
		}
	}
}

func TestCompilePDF(t *testing.T) {
	bc := NewBookCompiler(t.TempDir(), nil)
	res, err := bc.Compile(sampleBook(), FormatPDF)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !bytes.HasPrefix(res.Data, []byte("%PDF")) {
		t.Fatalf("output is not a pdf")
	}
	if res.Filename != "My_Book_.pdf" || res.MimeType != "application/pdf" {
		t.Fatalf("unexpected metadata: %q %q", res.Filename, res.MimeType)
	}
}

func TestCompileWithCover(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "cover.png")
	book := sampleBook()
	book.CoverImagePath = "/uploads/cover.png"
	bc := NewBookCompiler(dir, nil)

	res, err := bc.Compile(book, FormatDOCX)
	if err != nil {
		t.Fatalf("compile docx: %v", err)
	}
	parts := readZip(t, res.Data)
	if _, ok := parts["word/media/cover.png"]; !ok {
		t.Fatalf("cover image not embedded")
	}
	if !strings.Contains(parts["word/_rels/document.xml.rels"], coverRelID) {
		t.Fatalf("cover relationship missing")
	}

	pdfRes, err := bc.Compile(book, FormatPDF)
	if err != nil {
		t.Fatalf("compile pdf: %v", err)
	}
	noCover, _ := bc.Compile(sampleBook(), FormatPDF)
	if len(pdfRes.Data) <= len(noCover.Data) {
		t.Fatalf("pdf with cover should be larger than without")
	}
}

func TestCompileMissingCoverIsSkipped(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "uploads"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "uploads", "junk.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, stored := range []string{"/uploads/missing.png", "/uploads/junk.png", "https://i.pravatar.cc/300", ""} {
		book := sampleBook()
		book.CoverImagePath = stored
		res, err := NewBookCompiler(dir, nil).Compile(book, FormatDOCX)
		if err != nil {
			t.Fatalf("%q: compile: %v", stored, err)
		}
		for name := range readZip(t, res.Data) {
			if strings.HasPrefix(name, "word/media/") {
				t.Fatalf("%q: unexpected media %s", stored, name)
			}
		}
	}
}

func TestCompileFailedChapterKeepsOthers(t *testing.T) {
	calls := 0
	failing := func(md string, log *logger.Logger) ([]Block, error) {
		calls++
		switch calls {
		case 2:
			return nil, errors.New("boom")
		case 3:
			panic("worse")
		}
		return TranslateMarkdown(md, log)
	}
	book := sampleBook()
	book.Chapters = append(book.Chapters, Chapter{Title: "Four", Content: "still **here**"})

	bc := NewBookCompiler(t.TempDir(), nil, WithTranslator(failing))
	chapters := bc.prepare(book, bc.log)
	if len(chapters) != 4 {
		t.Fatalf("expected 4 chapters, got %d", len(chapters))
	}
	if chapters[0].Failed || !chapters[1].Failed || !chapters[2].Failed || chapters[3].Failed {
		t.Fatalf("unexpected failure flags: %+v", chapters)
	}
	if chapters[1].Title != "Two" || len(chapters[1].Blocks) != 0 {
		t.Fatalf("failed chapter should keep title only: %+v", chapters[1])
	}

	calls = 0
	res, err := bc.Compile(book, FormatDOCX)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	doc := readZip(t, res.Data)["word/document.xml"]
	for _, want := range []string{"One", "Two", "Four", "here"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("document.xml missing %q", want)
		}
	}
	if strings.Contains(doc, "a quote") {
		t.Fatalf("failed chapter content leaked into output")
	}
}

func TestCompileUnknownFormat(t *testing.T) {
	_, err := NewBookCompiler("", nil).Compile(sampleBook(), Format("epub"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestCompileEmptyBook(t *testing.T) {
	book := Book{Title: "Empty", Author: "Nobody"}
	for _, f := range []Format{FormatDOCX, FormatPDF} {
		if _, err := NewBookCompiler("", nil).Compile(book, f); err != nil {
			t.Fatalf("%s: %v", f, err)
		}
	}
}
