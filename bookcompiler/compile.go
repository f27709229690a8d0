package bookcompiler

import (
	"errors"
	"fmt"

	"github.com/opd-ai/bookforge/logger"
)

// TranslateFunc turns one chapter's markdown into blocks.
type TranslateFunc func(markdown string, log *logger.Logger) ([]Block, error)

// BookCompiler turns book snapshots into DOCX or PDF documents. It holds
// no per-export state and may be shared between goroutines.
type BookCompiler struct {
	// BaseDir is the directory stored cover paths are relative to.
	BaseDir   string
	log       *logger.Logger
	translate TranslateFunc
	docx      docxTheme
	pdf       pdfTheme
}

type Option func(*BookCompiler)

// WithTranslator replaces the markdown pipeline used for chapter content.
func WithTranslator(fn TranslateFunc) Option {
	return func(bc *BookCompiler) { bc.translate = fn }
}

// NewBookCompiler creates a compiler resolving covers under baseDir.
func NewBookCompiler(baseDir string, log *logger.Logger, opts ...Option) *BookCompiler {
	bc := &BookCompiler{
		BaseDir:   baseDir,
		log:       logger.OrNop(log).With("component", "bookcompiler"),
		translate: TranslateMarkdown,
		docx:      defaultDocxTheme,
		pdf:       defaultPDFTheme,
	}
	for _, opt := range opts {
		opt(bc)
	}
	return bc
}

// TranslateMarkdown is the default chapter pipeline: tokenize, then
// translate.
func TranslateMarkdown(markdown string, log *logger.Logger) ([]Block, error) {
	return Translate(Tokenize(markdown), log), nil
}

// Compile renders book in the requested format. The returned Result is
// complete; nothing is streamed.
func (bc *BookCompiler) Compile(book Book, format Format) (Result, error) {
	log := bc.log.With("book_id", book.ID, "format", string(format))

	var render func(Book, []chapterBlocks, *coverImage) ([]byte, error)
	switch format {
	case FormatDOCX:
		render = func(b Book, ch []chapterBlocks, c *coverImage) ([]byte, error) {
			return renderDOCX(b, ch, c, bc.docx, log)
		}
	case FormatPDF:
		render = func(b Book, ch []chapterBlocks, c *coverImage) ([]byte, error) {
			return renderPDF(b, ch, c, bc.pdf, log)
		}
	default:
		return Result{}, fmt.Errorf("compiling %q: %w", format, ErrUnknownFormat)
	}

	chapters := bc.prepare(book, log)
	cover, err := loadCover(book.CoverImagePath, bc.BaseDir)
	if err != nil {
		if !errors.Is(err, ErrNoCover) {
			log.Debug("skipping cover", "error", err)
		}
		cover = nil
	}

	data, err := render(book, chapters, cover)
	if err != nil {
		return Result{}, fmt.Errorf("rendering %s: %w", format, err)
	}
	log.Info("book compiled", "chapters", len(chapters), "bytes", len(data), "cover", cover != nil)
	return Result{
		Data:     data,
		Filename: Filename(book.Title, format),
		MimeType: MimeType(format),
	}, nil
}

// prepare translates every chapter up front. A chapter whose translation
// fails or panics keeps its title and loses its content.
func (bc *BookCompiler) prepare(book Book, log *logger.Logger) []chapterBlocks {
	out := make([]chapterBlocks, 0, len(book.Chapters))
	for i, ch := range book.Chapters {
		blocks, err := bc.translateChapter(ch.Content, log)
		if err != nil {
			log.Error("translating chapter", "chapter", i, "title", ch.Title, "error", err)
			out = append(out, chapterBlocks{Title: ch.Title, Failed: true})
			continue
		}
		out = append(out, chapterBlocks{Title: ch.Title, Blocks: blocks})
	}
	return out
}

func (bc *BookCompiler) translateChapter(content string, log *logger.Logger) (blocks []Block, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("translation panic: %v", r)
		}
	}()
	return bc.translate(content, log)
}
