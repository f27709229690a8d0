package bookcompiler

import "strings"

// FormatInline folds bold/italic markers into styled runs. A marker flushes
// the pending text under the style that was active before it, so a run
// never spans a style change. Unmatched closes just clear the flag.
func FormatInline(children []InlineToken) []Run {
	var (
		runs         []Run
		buf          strings.Builder
		bold, italic bool
	)
	flush := func() {
		text := buf.String()
		buf.Reset()
		if strings.TrimSpace(text) == "" {
			return
		}
		runs = append(runs, Run{Text: text, Bold: bold, Italic: italic})
	}

	for _, child := range children {
		switch child.Kind {
		case InlineText:
			buf.WriteString(child.Content)
		case InlineStrongOpen:
			flush()
			bold = true
		case InlineStrongClose:
			flush()
			bold = false
		case InlineEmOpen:
			flush()
			italic = true
		case InlineEmClose:
			flush()
			italic = false
		}
	}
	flush()
	return runs
}

// plainText concatenates the text children, ignoring formatting.
func plainText(children []InlineToken) string {
	var b strings.Builder
	for _, child := range children {
		if child.Kind == InlineText {
			b.WriteString(child.Content)
		}
	}
	return b.String()
}
