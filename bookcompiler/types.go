// Package bookcompiler turns book markdown into DOCX and PDF documents.
package bookcompiler

import "errors"

// TokenKind identifies one entry of the flat markdown token stream.
type TokenKind int

const (
	TokenUnsupported TokenKind = iota
	TokenHeadingOpen
	TokenHeadingClose
	TokenParagraphOpen
	TokenParagraphClose
	TokenInline
	TokenBulletListOpen
	TokenBulletListClose
	TokenOrderedListOpen
	TokenOrderedListClose
	TokenListItemOpen
	TokenListItemClose
	TokenBlockquoteOpen
	TokenBlockquoteClose
	TokenCodeBlock
	TokenFence
	TokenHR
)

var tokenNames = map[TokenKind]string{
	TokenUnsupported:      "unsupported",
	TokenHeadingOpen:      "heading_open",
	TokenHeadingClose:     "heading_close",
	TokenParagraphOpen:    "paragraph_open",
	TokenParagraphClose:   "paragraph_close",
	TokenInline:           "inline",
	TokenBulletListOpen:   "bullet_list_open",
	TokenBulletListClose:  "bullet_list_close",
	TokenOrderedListOpen:  "ordered_list_open",
	TokenOrderedListClose: "ordered_list_close",
	TokenListItemOpen:     "list_item_open",
	TokenListItemClose:    "list_item_close",
	TokenBlockquoteOpen:   "blockquote_open",
	TokenBlockquoteClose:  "blockquote_close",
	TokenCodeBlock:        "code_block",
	TokenFence:            "fence",
	TokenHR:               "hr",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown"
}

// Token is one unit of parsed markdown structure.
type Token struct {
	Kind     TokenKind
	Level    int           // heading level, heading_open/heading_close only
	Content  string        // code text, flattened inline text, or the unsupported node name
	Children []InlineToken // inline only
}

type InlineKind int

const (
	InlineText InlineKind = iota
	InlineStrongOpen
	InlineStrongClose
	InlineEmOpen
	InlineEmClose
)

type InlineToken struct {
	Kind    InlineKind
	Content string
}

// Run is a contiguous span of text sharing one bold/italic combination.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
}

type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockListItem
	BlockBlockquote
	BlockCodeBlock
	BlockRule
	BlockSpacer
)

// Block is a format-agnostic unit of document content. Which fields are
// meaningful depends on Kind.
type Block struct {
	Kind    BlockKind
	Level   int
	Text    string
	Runs    []Run
	Ordinal *int // nil for bullet items
	InList  bool
}

// Book is the read-only snapshot a renderer works from.
type Book struct {
	ID             string
	OwnerID        string
	Title          string
	Author         string
	Subtitle       string
	CoverImagePath string
	Chapters       []Chapter
}

type Chapter struct {
	Title   string
	Content string
}

// chapterBlocks is the translated form of one chapter. Failed is set when
// translation broke down and the chapter renders as a title only.
type chapterBlocks struct {
	Title  string
	Blocks []Block
	Failed bool
}

type Format string

const (
	FormatDOCX Format = "docx"
	FormatPDF  Format = "pdf"
)

// Result is a fully materialized export.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNoCover       = errors.New("no usable cover image")
)
