package bookcompiler

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/opd-ai/bookforge/logger"
)

type pdfWriter struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	theme pdfTheme
	log   *logger.Logger
}

// renderPDF lays the book out on A4 pages. Text flows with the engine's
// automatic page breaks; only the cover and chapter starts force a page.
func renderPDF(book Book, chapters []chapterBlocks, cover *coverImage, theme pdfTheme, log *logger.Logger) ([]byte, error) {
	p := newPDFWriter(book, theme, log)
	p.pdf.AddPage()
	if cover != nil {
		p.coverPage(cover)
	}
	p.titlePage(book)
	for i, ch := range chapters {
		p.chapter(i, ch)
	}
	return p.output()
}

// newPDFWriter sets up the document using the core fonts, which only cover
// code page 1252. Characters outside it come out as '.'.
func newPDFWriter(book Book, theme pdfTheme, log *logger.Logger) *pdfWriter {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(theme.Margin, theme.Margin, theme.Margin)
	pdf.SetAutoPageBreak(true, theme.Margin)
	pdf.SetTitle(book.Title, true)
	pdf.SetAuthor(book.Author, true)
	pdf.SetCreator("bookforge", true)
	return &pdfWriter{
		pdf:   pdf,
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		theme: theme,
		log:   log,
	}
}

func (p *pdfWriter) output() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// text converts s to the document code page.
func (p *pdfWriter) text(s string) string {
	out := p.tr(s)
	if lost := strings.Count(out, ".") - strings.Count(s, "."); lost > 0 {
		p.log.Debug("characters outside the pdf code page replaced", "count", lost)
	}
	return out
}

func (p *pdfWriter) lineHeight(size float64) float64 {
	return size * p.theme.LineFactor
}

func (p *pdfWriter) font(family, style string, size float64, c rgb) {
	p.pdf.SetFont(family, style, size)
	p.pdf.SetTextColor(c.R, c.G, c.B)
}

func (p *pdfWriter) coverPage(cover *coverImage) {
	imageType := strings.ToUpper(cover.Format)
	if imageType == "JPEG" {
		imageType = "JPG"
	}
	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := p.pdf.RegisterImageOptionsReader("cover", opts, bytes.NewReader(cover.Data))
	if p.pdf.Err() || info == nil {
		p.log.Warn("embedding cover image", "error", p.pdf.Error())
		p.pdf.ClearError()
		return
	}

	pageW, pageH := p.pdf.GetPageSize()
	m := p.theme.Margin
	availW, availH := pageW-2*m, pageH-2*m
	w, h := fit(info.Width(), info.Height(), availW*p.theme.CoverRatio, availH*p.theme.CoverRatio)
	p.pdf.ImageOptions("cover", m+(availW-w)/2, m+(availH-h)/2, w, h, false, opts, 0, "")
	if p.pdf.Err() {
		p.log.Warn("drawing cover image", "error", p.pdf.Error())
		p.pdf.ClearError()
		return
	}
	p.pdf.AddPage()
}

func (p *pdfWriter) titlePage(book Book) {
	t := p.theme
	p.font(t.Sans, "B", t.Title, t.HeadingColor)
	p.pdf.MultiCell(0, p.lineHeight(t.Title), p.text(book.Title), "", "C", false)
	p.pdf.Ln(p.lineHeight(t.Body) * 2)

	if strings.TrimSpace(book.Subtitle) != "" {
		p.font(t.Sans, "", t.Subtitle, t.TextColor)
		p.pdf.MultiCell(0, p.lineHeight(t.Subtitle), p.text(book.Subtitle), "", "C", false)
		p.pdf.Ln(p.lineHeight(t.Body))
	}

	p.font(t.Sans, "", t.Author, t.HeadingColor)
	p.pdf.MultiCell(0, p.lineHeight(t.Author), p.text("by "+book.Author), "", "C", false)
}

// chapter starts a new page and streams the chapter's blocks. Failures are
// contained to the chapter: panics are recovered and engine errors cleared.
func (p *pdfWriter) chapter(index int, ch chapterBlocks) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("rendering pdf chapter", "chapter", index, "panic", r)
		}
		if p.pdf.Err() {
			p.log.Error("rendering pdf chapter", "chapter", index, "error", p.pdf.Error())
			p.pdf.ClearError()
		}
		p.pdf.SetLeftMargin(p.theme.Margin)
	}()

	t := p.theme
	p.pdf.AddPage()
	p.font(t.Sans, "B", t.Chapter, t.ChapterColor)
	p.pdf.MultiCell(0, p.lineHeight(t.Chapter), p.text(chapterTitle(ch.Title, index)), "", "L", false)
	p.pdf.Ln(t.Body * 1.5)

	for _, b := range ch.Blocks {
		p.block(b)
	}
}

func (p *pdfWriter) block(b Block) {
	t := p.theme
	m := t.Margin
	switch b.Kind {
	case BlockHeading:
		size := t.headingSize(b.Level)
		p.pdf.Ln(size * 0.6)
		p.font(t.Sans, "B", size, t.HeadingColor)
		p.pdf.MultiCell(0, p.lineHeight(size), p.text(b.Text), "", "L", false)
		p.pdf.Ln(size * 0.3)

	case BlockParagraph:
		p.runs(b.Runs)
		p.pdf.Ln(p.lineHeight(t.Body))
		if b.InList {
			p.pdf.Ln(t.Body * 0.3)
		} else {
			p.pdf.Ln(t.Body * 0.6)
		}

	case BlockListItem:
		marker := "•"
		if b.Ordinal != nil {
			marker = strconv.Itoa(*b.Ordinal) + "."
		}
		p.pdf.SetLeftMargin(m + t.ListIndent)
		p.pdf.SetX(m + t.ListIndent)
		p.font(t.Sans, "", t.Body, t.TextColor)
		p.pdf.Write(p.lineHeight(t.Body), p.text(marker+" "))
		p.runs(b.Runs)
		p.pdf.Ln(p.lineHeight(t.Body))
		p.pdf.SetLeftMargin(m)

	case BlockBlockquote:
		top := p.pdf.GetY()
		p.pdf.SetLeftMargin(m + t.QuoteIndent)
		p.pdf.SetX(m + t.QuoteIndent)
		p.font(t.Sans, "I", t.Body, t.QuoteColor)
		p.pdf.MultiCell(0, p.lineHeight(t.Body), p.text(cleanText(b.Text)), "", "L", false)
		p.pdf.SetLeftMargin(m)
		if bottom := p.pdf.GetY(); bottom > top {
			p.pdf.SetDrawColor(t.QuoteRule.R, t.QuoteRule.G, t.QuoteRule.B)
			p.pdf.SetLineWidth(2)
			p.pdf.Line(m+t.QuoteIndent/2, top, m+t.QuoteIndent/2, bottom)
		}
		p.pdf.Ln(t.Body * 0.6)

	case BlockCodeBlock:
		p.font(t.Mono, "", t.Code, t.CodeColor)
		p.pdf.SetFillColor(t.CodeShade.R, t.CodeShade.G, t.CodeShade.B)
		code := strings.TrimRight(cleanText(b.Text), "\n")
		p.pdf.MultiCell(0, p.lineHeight(t.Code), p.text(code), "", "L", true)
		p.pdf.Ln(t.Body * 0.6)

	case BlockRule:
		pageW, _ := p.pdf.GetPageSize()
		p.pdf.Ln(t.Body * 0.6)
		y := p.pdf.GetY()
		p.pdf.SetDrawColor(t.RuleColor.R, t.RuleColor.G, t.RuleColor.B)
		p.pdf.SetLineWidth(0.5)
		p.pdf.Line(m, y, pageW-m, y)
		p.pdf.Ln(t.Body * 0.6)

	case BlockSpacer:
		p.pdf.Ln(p.lineHeight(t.Body) * 0.5)
	}
}

func (p *pdfWriter) runs(runs []Run) {
	t := p.theme
	for _, r := range runs {
		style := ""
		if r.Bold {
			style += "B"
		}
		if r.Italic {
			style += "I"
		}
		p.font(t.Sans, style, t.Body, t.TextColor)
		p.pdf.Write(p.lineHeight(t.Body), p.text(cleanText(r.Text)))
	}
}
