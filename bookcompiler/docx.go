package bookcompiler

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/opd-ai/bookforge/logger"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relDoc    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"

	coverRelID = "rIdCover"
	emuPerPx   = 9525
)

type border struct {
	Side  string // "left" or "bottom"
	Color string
	Size  int
}

type paraProps struct {
	Style           string
	PageBreakBefore bool
	Border          *border
	Shading         string
	Before, After   int
	Line            int
	IndentLeft      int
	Align           string // "center" or "both"
}

type runProps struct {
	Font   string
	Bold   bool
	Italic bool
	Color  string
	Size   int // points
	Half   int // explicit half-points, wins over Size
}

type runSpec struct {
	Text  string
	Props runProps
}

type docxWriter struct {
	theme docxTheme
	log   *logger.Logger
	body  *etree.Element
	doc   *etree.Document
	cover *coverImage
	emit  func(Block)
}

func newDocxWriter(theme docxTheme, log *logger.Logger) *docxWriter {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", nsW)
	root.CreateAttr("xmlns:r", nsR)
	root.CreateAttr("xmlns:wp", nsWP)
	root.CreateAttr("xmlns:a", nsA)
	root.CreateAttr("xmlns:pic", nsPic)
	w := &docxWriter{
		theme: theme,
		log:   log,
		doc:   doc,
		body:  root.CreateElement("w:body"),
	}
	w.emit = w.block
	return w
}

// renderDOCX lays out cover, title page and chapters into a .docx package.
func renderDOCX(book Book, chapters []chapterBlocks, cover *coverImage, theme docxTheme, log *logger.Logger) ([]byte, error) {
	w := newDocxWriter(theme, log)

	if cover != nil {
		w.coverPage(cover)
	}
	w.titlePage(book)
	for i, ch := range chapters {
		w.chapter(i, ch)
	}
	w.sectionProps()

	return w.pack()
}

func (w *docxWriter) coverPage(cover *coverImage) {
	w.cover = cover
	w.paragraph(paraProps{Before: 1000})

	width, height := fit(float64(cover.Width), float64(cover.Height),
		float64(w.theme.CoverMaxW), float64(w.theme.CoverMaxH))
	p := w.paragraph(paraProps{Align: "center", Before: 2000, After: 400})
	w.drawing(p.CreateElement("w:r"), int64(width)*emuPerPx, int64(height)*emuPerPx)

	brk := w.paragraph(paraProps{})
	brk.CreateElement("w:r").CreateElement("w:br").CreateAttr("w:type", "page")
}

func (w *docxWriter) titlePage(book Book) {
	t := w.theme
	w.paragraph(paraProps{Align: "center", Before: 2000, After: 400},
		runSpec{book.Title, runProps{Font: t.HeadingFont, Bold: true, Size: t.Title, Color: t.TitleColor}})

	if strings.TrimSpace(book.Subtitle) != "" {
		w.paragraph(paraProps{Align: "center", After: 400},
			runSpec{book.Subtitle, runProps{Font: t.HeadingFont, Size: t.Subtitle, Color: t.SubtitleColor}})
	}

	w.paragraph(paraProps{Align: "center", After: 200},
		runSpec{"by " + book.Author, runProps{Font: t.HeadingFont, Size: t.Author, Color: t.ByColor}})

	w.paragraph(paraProps{
		Align:  "center",
		Before: 400,
		After:  200,
		Border: &border{Side: "bottom", Color: t.DividerColor, Size: 12},
	})
}

// chapter writes one chapter. A panic while mapping its blocks is
// contained here so the remaining chapters still render.
func (w *docxWriter) chapter(index int, ch chapterBlocks) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("rendering docx chapter", "chapter", index, "panic", r)
		}
	}()

	t := w.theme
	if index > 0 {
		w.paragraph(paraProps{PageBreakBefore: true})
	}
	w.paragraph(paraProps{Before: t.ChapterBefore, After: t.ChapterAfter},
		runSpec{chapterTitle(ch.Title, index), runProps{Font: t.HeadingFont, Bold: true, Size: t.Chapter, Color: t.ChapterColor}})

	for _, b := range ch.Blocks {
		w.emit(b)
	}
}

func (w *docxWriter) block(b Block) {
	t := w.theme
	switch b.Kind {
	case BlockHeading:
		w.paragraph(paraProps{Style: "Heading" + strconv.Itoa(b.Level), Before: t.HeadingBefore, After: t.HeadingAfter},
			runSpec{b.Text, runProps{Font: t.HeadingFont, Bold: true, Size: t.headingSize(b.Level)}})

	case BlockParagraph:
		pp := paraProps{Align: "both", Before: t.ParaBefore, After: t.ParaAfter, Line: t.LineSpacing}
		if b.InList {
			pp.Before, pp.After = t.InListSpacing, t.InListSpacing
		}
		w.paragraph(pp, w.bodyRuns(b.Runs)...)

	case BlockListItem:
		marker := "•"
		if b.Ordinal != nil {
			marker = strconv.Itoa(*b.Ordinal) + "."
		}
		runs := append([]runSpec{{marker + " ", runProps{Font: t.BodyFont, Size: t.Body}}}, w.bodyRuns(b.Runs)...)
		w.paragraph(paraProps{Before: t.ItemSpacing, After: t.ItemSpacing, IndentLeft: t.ListIndent}, runs...)

	case BlockBlockquote:
		w.paragraph(paraProps{
			Align:      "both",
			Before:     t.ParaBefore,
			After:      t.ParaAfter,
			IndentLeft: t.ListIndent,
			Border:     &border{Side: "left", Color: t.QuoteRule, Size: 24},
		}, runSpec{b.Text, runProps{Font: t.BodyFont, Italic: true, Color: t.QuoteColor, Size: t.Body}})

	case BlockCodeBlock:
		p := w.paragraph(paraProps{Before: t.ParaBefore, After: t.ParaAfter, Shading: t.CodeShade})
		r := p.CreateElement("w:r")
		w.runProps(r, runProps{Font: t.CodeFont, Color: t.CodeColor, Half: t.CodeHalfPoints})
		for i, line := range strings.Split(strings.TrimRight(b.Text, "\n"), "\n") {
			if i > 0 {
				r.CreateElement("w:br")
			}
			writeText(r, line)
		}

	case BlockRule:
		w.paragraph(paraProps{Before: 300, After: 300, Border: &border{Side: "bottom", Color: t.RuleColor, Size: 6}})

	case BlockSpacer:
		w.paragraph(paraProps{After: t.InListSpacing})
	}
}

func (w *docxWriter) bodyRuns(runs []Run) []runSpec {
	out := make([]runSpec, 0, len(runs))
	for _, r := range runs {
		out = append(out, runSpec{r.Text, runProps{Font: w.theme.BodyFont, Bold: r.Bold, Italic: r.Italic, Size: w.theme.Body}})
	}
	return out
}

func (w *docxWriter) paragraph(pp paraProps, runs ...runSpec) *etree.Element {
	p := w.body.CreateElement("w:p")
	w.paraProps(p, pp)
	for _, rs := range runs {
		r := p.CreateElement("w:r")
		w.runProps(r, rs.Props)
		writeText(r, rs.Text)
	}
	return p
}

// paraProps writes w:pPr children in schema order.
func (w *docxWriter) paraProps(p *etree.Element, pp paraProps) {
	ppr := p.CreateElement("w:pPr")
	if pp.Style != "" {
		ppr.CreateElement("w:pStyle").CreateAttr("w:val", pp.Style)
	}
	if pp.PageBreakBefore {
		ppr.CreateElement("w:pageBreakBefore")
	}
	if pp.Border != nil {
		side := ppr.CreateElement("w:pBdr").CreateElement("w:" + pp.Border.Side)
		side.CreateAttr("w:val", "single")
		side.CreateAttr("w:sz", strconv.Itoa(pp.Border.Size))
		side.CreateAttr("w:space", "1")
		side.CreateAttr("w:color", pp.Border.Color)
	}
	if pp.Shading != "" {
		shd := ppr.CreateElement("w:shd")
		shd.CreateAttr("w:val", "clear")
		shd.CreateAttr("w:color", "auto")
		shd.CreateAttr("w:fill", pp.Shading)
	}
	if pp.Before > 0 || pp.After > 0 || pp.Line > 0 {
		sp := ppr.CreateElement("w:spacing")
		if pp.Before > 0 {
			sp.CreateAttr("w:before", strconv.Itoa(pp.Before))
		}
		if pp.After > 0 {
			sp.CreateAttr("w:after", strconv.Itoa(pp.After))
		}
		if pp.Line > 0 {
			sp.CreateAttr("w:line", strconv.Itoa(pp.Line))
			sp.CreateAttr("w:lineRule", "auto")
		}
	}
	if pp.IndentLeft > 0 {
		ppr.CreateElement("w:ind").CreateAttr("w:left", strconv.Itoa(pp.IndentLeft))
	}
	if pp.Align != "" {
		ppr.CreateElement("w:jc").CreateAttr("w:val", pp.Align)
	}
}

// runProps writes w:rPr children in schema order.
func (w *docxWriter) runProps(r *etree.Element, rp runProps) {
	rpr := r.CreateElement("w:rPr")
	if rp.Font != "" {
		fonts := rpr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", rp.Font)
		fonts.CreateAttr("w:hAnsi", rp.Font)
		fonts.CreateAttr("w:cs", rp.Font)
	}
	if rp.Bold {
		rpr.CreateElement("w:b")
	}
	if rp.Italic {
		rpr.CreateElement("w:i")
	}
	if rp.Color != "" {
		rpr.CreateElement("w:color").CreateAttr("w:val", rp.Color)
	}
	half := rp.Half
	if half == 0 {
		half = rp.Size * 2
	}
	if half > 0 {
		rpr.CreateElement("w:sz").CreateAttr("w:val", strconv.Itoa(half))
		rpr.CreateElement("w:szCs").CreateAttr("w:val", strconv.Itoa(half))
	}
}

func writeText(r *etree.Element, s string) {
	t := r.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(s)
}

func (w *docxWriter) drawing(r *etree.Element, cx, cy int64) {
	ext := func(el *etree.Element) {
		el.CreateAttr("cx", strconv.FormatInt(cx, 10))
		el.CreateAttr("cy", strconv.FormatInt(cy, 10))
	}

	inline := r.CreateElement("w:drawing").CreateElement("wp:inline")
	for _, a := range []string{"distT", "distB", "distL", "distR"} {
		inline.CreateAttr(a, "0")
	}
	ext(inline.CreateElement("wp:extent"))
	docPr := inline.CreateElement("wp:docPr")
	docPr.CreateAttr("id", "1")
	docPr.CreateAttr("name", "Cover")

	data := inline.CreateElement("a:graphic").CreateElement("a:graphicData")
	data.CreateAttr("uri", nsPic)
	pic := data.CreateElement("pic:pic")

	nv := pic.CreateElement("pic:nvPicPr")
	cNvPr := nv.CreateElement("pic:cNvPr")
	cNvPr.CreateAttr("id", "0")
	cNvPr.CreateAttr("name", "cover."+w.cover.Format)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", coverRelID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	spPr := pic.CreateElement("pic:spPr")
	xfrm := spPr.CreateElement("a:xfrm")
	off := xfrm.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext(xfrm.CreateElement("a:ext"))
	geom := spPr.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
}

// sectionProps closes the body with A4 page size and margins.
func (w *docxWriter) sectionProps() {
	sect := w.body.CreateElement("w:sectPr")
	size := sect.CreateElement("w:pgSz")
	size.CreateAttr("w:w", "11906")
	size.CreateAttr("w:h", "16838")
	mar := sect.CreateElement("w:pgMar")
	m := strconv.Itoa(w.theme.Margin)
	for _, a := range []string{"w:top", "w:right", "w:bottom", "w:left"} {
		mar.CreateAttr(a, m)
	}
	mar.CreateAttr("w:header", "720")
	mar.CreateAttr("w:footer", "720")
	mar.CreateAttr("w:gutter", "0")
}

func (w *docxWriter) pack() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		doc  *etree.Document
	}{
		{"[Content_Types].xml", contentTypes()},
		{"_rels/.rels", packageRels()},
		{"word/_rels/document.xml.rels", w.documentRels()},
		{"word/styles.xml", stylesPart(w.theme)},
		{"word/document.xml", w.doc},
	}
	for _, part := range parts {
		if err := writeXMLToZip(zw, part.name, part.doc); err != nil {
			return nil, fmt.Errorf("writing %s: %w", part.name, err)
		}
	}
	if w.cover != nil {
		if err := writeDataToZip(zw, "word/media/cover."+w.cover.Format, w.cover.Data); err != nil {
			return nil, fmt.Errorf("writing cover media: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing docx archive: %w", err)
	}
	return buf.Bytes(), nil
}

func newPart(root, ns string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	el := doc.CreateElement(root)
	el.CreateAttr("xmlns", ns)
	return doc, el
}

func contentTypes() *etree.Document {
	doc, types := newPart("Types", "http://schemas.openxmlformats.org/package/2006/content-types")
	defaults := [][2]string{
		{"rels", "application/vnd.openxmlformats-package.relationships+xml"},
		{"xml", "application/xml"},
		{"png", "image/png"},
		{"jpeg", "image/jpeg"},
		{"gif", "image/gif"},
	}
	for _, d := range defaults {
		el := types.CreateElement("Default")
		el.CreateAttr("Extension", d[0])
		el.CreateAttr("ContentType", d[1])
	}
	overrides := [][2]string{
		{"/word/document.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"},
		{"/word/styles.xml", "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"},
	}
	for _, o := range overrides {
		el := types.CreateElement("Override")
		el.CreateAttr("PartName", o[0])
		el.CreateAttr("ContentType", o[1])
	}
	return doc
}

func relationship(parent *etree.Element, id, typ, target string) {
	rel := parent.CreateElement("Relationship")
	rel.CreateAttr("Id", id)
	rel.CreateAttr("Type", typ)
	rel.CreateAttr("Target", target)
}

func packageRels() *etree.Document {
	doc, rels := newPart("Relationships", "http://schemas.openxmlformats.org/package/2006/relationships")
	relationship(rels, "rId1", relDoc, "word/document.xml")
	return doc
}

func (w *docxWriter) documentRels() *etree.Document {
	doc, rels := newPart("Relationships", "http://schemas.openxmlformats.org/package/2006/relationships")
	relationship(rels, "rId1", relStyles, "styles.xml")
	if w.cover != nil {
		relationship(rels, coverRelID, relImage, "media/cover."+w.cover.Format)
	}
	return doc
}

func stylesPart(t docxTheme) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	styles := doc.CreateElement("w:styles")
	styles.CreateAttr("xmlns:w", nsW)

	normal := paragraphStyle(styles, "Normal", "Normal", "")
	fonts := normal.CreateElement("w:rPr").CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", t.BodyFont)
	fonts.CreateAttr("w:hAnsi", t.BodyFont)

	for level := 1; level <= 3; level++ {
		st := paragraphStyle(styles, "Heading"+strconv.Itoa(level), "heading "+strconv.Itoa(level), "Normal")
		ppr := st.CreateElement("w:pPr")
		ppr.CreateElement("w:keepNext")
		ppr.CreateElement("w:outlineLvl").CreateAttr("w:val", strconv.Itoa(level-1))
		rpr := st.CreateElement("w:rPr")
		hf := rpr.CreateElement("w:rFonts")
		hf.CreateAttr("w:ascii", t.HeadingFont)
		hf.CreateAttr("w:hAnsi", t.HeadingFont)
		rpr.CreateElement("w:b")
		half := strconv.Itoa(t.headingSize(level) * 2)
		rpr.CreateElement("w:sz").CreateAttr("w:val", half)
		rpr.CreateElement("w:szCs").CreateAttr("w:val", half)
	}
	return doc
}

func paragraphStyle(styles *etree.Element, id, name, basedOn string) *etree.Element {
	st := styles.CreateElement("w:style")
	st.CreateAttr("w:type", "paragraph")
	st.CreateAttr("w:styleId", id)
	st.CreateElement("w:name").CreateAttr("w:val", name)
	if basedOn != "" {
		st.CreateElement("w:basedOn").CreateAttr("w:val", basedOn)
		st.CreateElement("w:next").CreateAttr("w:val", basedOn)
	}
	st.CreateElement("w:qFormat")
	return st
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
