package bookcompiler

import (
	"strconv"
	"strings"
	"unicode"
)

// Filename derives the download name for a book: every rune outside
// [A-Za-z0-9] becomes '_', then the format extension is appended.
func Filename(title string, format Format) string {
	var b strings.Builder
	for _, r := range title {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return b.String() + "." + string(format)
}

// MimeType returns the content type served for a format.
func MimeType(format Format) string {
	switch format {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// ParseFormat accepts the route and flag spellings of each format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "docx", "document", "word":
		return FormatDOCX, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", ErrUnknownFormat
}

func chapterTitle(title string, index int) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return "Chapter " + strconv.Itoa(index+1)
}

// cleanText normalizes whitespace the core PDF fonts cannot lay out.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	text = strings.ReplaceAll(text, "\u00a0", " ")
	return text
}
