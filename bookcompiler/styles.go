package bookcompiler

// docxTheme is the word-processing type scale. Font sizes are points and
// are doubled into half-points when written; spacing and indents are twips.
type docxTheme struct {
	BodyFont, HeadingFont, CodeFont string

	Title, Subtitle, Author, Chapter int
	H1, H2, H3, Body                 int
	CodeHalfPoints                   int

	TitleColor, SubtitleColor, ByColor  string
	ChapterColor, QuoteColor, QuoteRule string
	CodeColor, CodeShade                string
	DividerColor, RuleColor             string

	Margin, ListIndent, LineSpacing      int
	ParaBefore, ParaAfter, InListSpacing int
	ChapterBefore, ChapterAfter          int
	HeadingBefore, HeadingAfter          int
	ItemSpacing                          int

	CoverMaxW, CoverMaxH int // pixels
}

var defaultDocxTheme = docxTheme{
	BodyFont:    "Character",
	HeadingFont: "Inter",
	CodeFont:    "Courier New",

	Title: 32, Subtitle: 20, Author: 24, Chapter: 24,
	H1: 20, H2: 18, H3: 16, Body: 12,
	CodeHalfPoints: 20,

	TitleColor:    "1A202C",
	SubtitleColor: "4A5568",
	ByColor:       "2D3748",
	ChapterColor:  "2C5282",
	QuoteColor:    "666666",
	QuoteRule:     "4F46E5",
	CodeColor:     "333333",
	CodeShade:     "F5F5F5",
	DividerColor:  "CBD5E0",
	RuleColor:     "CCCCCC",

	Margin:        1440,
	ListIndent:    720,
	LineSpacing:   360,
	ParaBefore:    200,
	ParaAfter:     200,
	InListSpacing: 100,
	ChapterBefore: 400,
	ChapterAfter:  300,
	HeadingBefore: 300,
	HeadingAfter:  150,
	ItemSpacing:   50,

	CoverMaxW: 400,
	CoverMaxH: 550,
}

func (t docxTheme) headingSize(level int) int {
	switch level {
	case 1:
		return t.H1
	case 2:
		return t.H2
	}
	return t.H3
}

type rgb struct{ R, G, B int }

// pdfTheme is the PDF type scale, in points.
type pdfTheme struct {
	Sans, Mono string

	Title, Subtitle, Author, Chapter float64
	H1, H2, H3, Body, Code           float64

	HeadingColor, TextColor, ChapterColor rgb
	QuoteColor, QuoteRule, CodeColor      rgb
	CodeShade, RuleColor                  rgb

	Margin      float64
	LineFactor  float64
	ListIndent  float64
	QuoteIndent float64
	CoverRatio  float64
}

var defaultPDFTheme = pdfTheme{
	Sans: "Helvetica",
	Mono: "Courier",

	Title: 28, Subtitle: 18, Author: 14, Chapter: 22,
	H1: 20, H2: 17, H3: 14, Body: 11, Code: 9.5,

	HeadingColor: rgb{0x1A, 0x20, 0x2C},
	TextColor:    rgb{0x2D, 0x37, 0x48},
	ChapterColor: rgb{0x2C, 0x52, 0x82},
	QuoteColor:   rgb{0x66, 0x66, 0x66},
	QuoteRule:    rgb{0x4F, 0x46, 0xE5},
	CodeColor:    rgb{0x33, 0x33, 0x33},
	CodeShade:    rgb{0xF5, 0xF5, 0xF5},
	RuleColor:    rgb{0xCC, 0xCC, 0xCC},

	Margin:      72,
	LineFactor:  1.45,
	ListIndent:  18,
	QuoteIndent: 24,
	CoverRatio:  0.8,
}

func (t pdfTheme) headingSize(level int) float64 {
	switch level {
	case 1:
		return t.H1
	case 2:
		return t.H2
	}
	return t.H3
}
