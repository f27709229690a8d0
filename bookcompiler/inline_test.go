package bookcompiler

import (
	"strings"
	"testing"
)

func txt(s string) InlineToken { return InlineToken{Kind: InlineText, Content: s} }

var (
	strongOpen  = InlineToken{Kind: InlineStrongOpen}
	strongClose = InlineToken{Kind: InlineStrongClose}
	emOpen      = InlineToken{Kind: InlineEmOpen}
	emClose     = InlineToken{Kind: InlineEmClose}
)

func TestFormatInlineFlushOnTransition(t *testing.T) {
	runs := FormatInline([]InlineToken{
		txt("Some "), strongOpen, txt("bold"), strongClose,
		txt(" and "), emOpen, txt("italic"), emClose, txt(" text."),
	})
	want := []Run{
		{Text: "Some "},
		{Text: "bold", Bold: true},
		{Text: " and "},
		{Text: "italic", Italic: true},
		{Text: " text."},
	}
	if len(runs) != len(want) {
		t.Fatalf("unexpected run count: got=%d want=%d (%+v)", len(runs), len(want), runs)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Fatalf("run %d: got=%+v want=%+v", i, runs[i], want[i])
		}
	}
}

func TestFormatInlineNestedStyles(t *testing.T) {
	runs := FormatInline([]InlineToken{
		strongOpen, txt("a"), emOpen, txt("b"), emClose, txt("c"), strongClose,
	})
	want := []Run{
		{Text: "a", Bold: true},
		{Text: "b", Bold: true, Italic: true},
		{Text: "c", Bold: true},
	}
	if len(runs) != len(want) {
		t.Fatalf("unexpected run count: got=%d want=%d", len(runs), len(want))
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Fatalf("run %d: got=%+v want=%+v", i, runs[i], want[i])
		}
	}
}

func TestFormatInlinePreservesText(t *testing.T) {
	children := []InlineToken{
		txt("one "), emOpen, txt("two"), strongOpen, txt(" three"), strongClose, emClose, txt(" four"),
	}
	var got strings.Builder
	for _, r := range FormatInline(children) {
		got.WriteString(r.Text)
	}
	if got.String() != plainText(children) {
		t.Fatalf("text changed: got=%q want=%q", got.String(), plainText(children))
	}
}

func TestFormatInlineUnmatchedClose(t *testing.T) {
	runs := FormatInline([]InlineToken{
		txt("before"), emClose, strongClose, txt("after"),
	})
	if len(runs) != 2 {
		t.Fatalf("unexpected run count: got=%d want=2", len(runs))
	}
	for _, r := range runs {
		if r.Bold || r.Italic {
			t.Fatalf("stuck style on %+v", r)
		}
	}
}

func TestFormatInlineUnmatchedCloseResetsFlag(t *testing.T) {
	runs := FormatInline([]InlineToken{
		strongOpen, txt("bold"), strongClose, strongClose, txt("plain"),
	})
	if len(runs) != 2 || runs[1].Bold {
		t.Fatalf("expected plain trailing run, got %+v", runs)
	}
}

func TestFormatInlineDropsWhitespaceRuns(t *testing.T) {
	runs := FormatInline([]InlineToken{
		txt("  "), strongOpen, txt(" "), strongClose, txt("\n"),
	})
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %+v", runs)
	}
	if runs := FormatInline(nil); len(runs) != 0 {
		t.Fatalf("expected no runs for empty input, got %+v", runs)
	}
}
