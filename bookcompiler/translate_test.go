package bookcompiler

import "testing"

func inline(s string) Token {
	return Token{Kind: TokenInline, Content: s, Children: []InlineToken{txt(s)}}
}

func para(s string) []Token {
	return []Token{{Kind: TokenParagraphOpen}, inline(s), {Kind: TokenParagraphClose}}
}

func item(s string) []Token {
	out := []Token{{Kind: TokenListItemOpen}}
	out = append(out, para(s)...)
	return append(out, Token{Kind: TokenListItemClose})
}

func concat(parts ...[]Token) []Token {
	var out []Token
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func kinds(blocks []Block) []BlockKind {
	out := make([]BlockKind, len(blocks))
	for i, b := range blocks {
		out[i] = b.Kind
	}
	return out
}

func sameKinds(got []Block, want ...BlockKind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i].Kind != want[i] {
			return false
		}
	}
	return true
}

func TestTranslateHeadingLevels(t *testing.T) {
	blocks := Translate(concat(
		[]Token{{Kind: TokenHeadingOpen, Level: 2}, inline("Two"), {Kind: TokenHeadingClose, Level: 2}},
		[]Token{{Kind: TokenHeadingOpen, Level: 4}, inline("Four"), {Kind: TokenHeadingClose, Level: 4}},
		[]Token{{Kind: TokenHeadingOpen, Level: 0}, inline("Zero"), {Kind: TokenHeadingClose, Level: 0}},
	), nil)
	if !sameKinds(blocks, BlockHeading, BlockHeading, BlockHeading) {
		t.Fatalf("unexpected blocks: %v", kinds(blocks))
	}
	for i, want := range []int{2, 3, 1} {
		if blocks[i].Level != want {
			t.Fatalf("heading %d: got level %d want %d", i, blocks[i].Level, want)
		}
	}
	if blocks[1].Text != "Four" {
		t.Fatalf("heading text: got %q", blocks[1].Text)
	}
}

func TestTranslateOrderedNumberingResets(t *testing.T) {
	tokens := concat(
		[]Token{{Kind: TokenOrderedListOpen}}, item("a"), item("b"), []Token{{Kind: TokenOrderedListClose}},
		[]Token{{Kind: TokenBulletListOpen}}, item("x"), []Token{{Kind: TokenBulletListClose}},
		[]Token{{Kind: TokenOrderedListOpen}}, item("c"), []Token{{Kind: TokenOrderedListClose}},
	)
	blocks := Translate(tokens, nil)
	if !sameKinds(blocks,
		BlockListItem, BlockListItem, BlockSpacer,
		BlockListItem, BlockSpacer,
		BlockListItem, BlockSpacer) {
		t.Fatalf("unexpected blocks: %v", kinds(blocks))
	}
	if blocks[0].Ordinal == nil || *blocks[0].Ordinal != 1 || blocks[1].Ordinal == nil || *blocks[1].Ordinal != 2 {
		t.Fatalf("first list not numbered 1,2: %+v %+v", blocks[0], blocks[1])
	}
	if blocks[3].Ordinal != nil {
		t.Fatalf("bullet item has ordinal %d", *blocks[3].Ordinal)
	}
	if blocks[5].Ordinal == nil || *blocks[5].Ordinal != 1 {
		t.Fatalf("second ordered list should restart at 1: %+v", blocks[5])
	}
}

func TestTranslateNestedOrderedLists(t *testing.T) {
	tokens := concat(
		[]Token{{Kind: TokenOrderedListOpen}, {Kind: TokenListItemOpen}},
		para("outer"),
		[]Token{{Kind: TokenOrderedListOpen}}, item("inner one"), item("inner two"), []Token{{Kind: TokenOrderedListClose}},
		[]Token{{Kind: TokenListItemClose}},
		item("outer two"),
		[]Token{{Kind: TokenOrderedListClose}},
	)
	blocks := Translate(tokens, nil)
	var ordinals []int
	for _, b := range blocks {
		if b.Kind == BlockListItem {
			ordinals = append(ordinals, *b.Ordinal)
		}
	}
	want := []int{1, 1, 2, 2}
	if len(ordinals) != len(want) {
		t.Fatalf("unexpected ordinals: %v", ordinals)
	}
	for i := range want {
		if ordinals[i] != want[i] {
			t.Fatalf("ordinals: got %v want %v", ordinals, want)
		}
	}
}

func TestTranslateEmptyListItem(t *testing.T) {
	blocks := Translate([]Token{
		{Kind: TokenBulletListOpen},
		{Kind: TokenListItemOpen},
		{Kind: TokenListItemClose},
		{Kind: TokenBulletListClose},
	}, nil)
	if !sameKinds(blocks, BlockListItem, BlockSpacer) {
		t.Fatalf("unexpected blocks: %v", kinds(blocks))
	}
	if len(blocks[0].Runs) != 0 {
		t.Fatalf("expected empty item, got %+v", blocks[0].Runs)
	}
}

func TestTranslateLaterParagraphInItem(t *testing.T) {
	tokens := concat(
		[]Token{{Kind: TokenBulletListOpen}, {Kind: TokenListItemOpen}},
		para("first"), para("second"),
		[]Token{{Kind: TokenListItemClose}, {Kind: TokenBulletListClose}},
	)
	blocks := Translate(tokens, nil)
	if !sameKinds(blocks, BlockListItem, BlockParagraph, BlockSpacer) {
		t.Fatalf("unexpected blocks: %v", kinds(blocks))
	}
	if !blocks[1].InList {
		t.Fatalf("second paragraph should be marked in-list")
	}
}

func TestTranslateBlockquoteFlattensText(t *testing.T) {
	quoted := Token{Kind: TokenInline, Children: []InlineToken{
		txt("be "), strongOpen, txt("bold"), strongClose,
	}}
	quoted.Content = plainText(quoted.Children)
	blocks := Translate([]Token{
		{Kind: TokenBlockquoteOpen},
		{Kind: TokenParagraphOpen}, quoted, {Kind: TokenParagraphClose},
		{Kind: TokenBlockquoteClose},
		{Kind: TokenBlockquoteOpen},
		{Kind: TokenParagraphOpen}, inline("   "), {Kind: TokenParagraphClose},
		{Kind: TokenBlockquoteClose},
	}, nil)
	if !sameKinds(blocks, BlockBlockquote) {
		t.Fatalf("unexpected blocks: %v", kinds(blocks))
	}
	if blocks[0].Text != "be bold" {
		t.Fatalf("quote text: got %q", blocks[0].Text)
	}
}

func TestTranslateMalformedStreams(t *testing.T) {
	blocks := Translate([]Token{
		{Kind: TokenHeadingOpen, Level: 1},
		{Kind: TokenParagraphOpen},
		inline("kept"),
		{Kind: TokenParagraphClose},
		{Kind: TokenParagraphClose},
		inline("orphan"),
		{Kind: TokenListItemClose},
		{Kind: TokenBulletListClose},
		{Kind: TokenBlockquoteClose},
	}, nil)
	if !sameKinds(blocks, BlockParagraph, BlockSpacer) {
		t.Fatalf("unexpected blocks: %v", kinds(blocks))
	}
	if blocks[0].Runs[0].Text != "kept" {
		t.Fatalf("paragraph text: got %+v", blocks[0].Runs)
	}
}

func TestTranslateSkipsUnsupportedAndEmpty(t *testing.T) {
	blocks := Translate(concat(
		[]Token{{Kind: TokenUnsupported, Content: "Table"}},
		para(""),
		[]Token{{Kind: TokenFence, Content: "x := 1\n"}, {Kind: TokenHR}},
	), nil)
	if !sameKinds(blocks, BlockCodeBlock, BlockRule) {
		t.Fatalf("unexpected blocks: %v", kinds(blocks))
	}
	if blocks[0].Text != "x := 1\n" {
		t.Fatalf("code text: got %q", blocks[0].Text)
	}
}
