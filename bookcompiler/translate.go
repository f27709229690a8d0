package bookcompiler

import (
	"strings"

	"github.com/opd-ai/bookforge/logger"
)

type listKind int

const (
	listBullet listKind = iota
	listOrdered
)

type listContext struct {
	kind    listKind
	counter int
}

type openItem struct {
	ordinal *int
	emitted bool
}

// leaf is a heading or paragraph waiting for its inline content.
type leaf struct {
	kind   TokenKind
	level  int
	filled bool
}

type translator struct {
	log       *logger.Logger
	blocks    []Block
	lists     []listContext
	items     []openItem
	quoteDeep int
	pending   *leaf
}

// Translate walks the token stream once and produces format-agnostic
// blocks. Malformed arrangements skip the offending token and are logged;
// translation itself never fails.
func Translate(tokens []Token, log *logger.Logger) []Block {
	t := &translator{log: logger.OrNop(log).With("component", "translator")}
	for i, tok := range tokens {
		t.step(i, tok)
	}
	if t.pending != nil && !t.pending.filled {
		t.log.Warn("stream ended inside block", "kind", t.pending.kind.String())
	}
	return t.blocks
}

func (t *translator) step(i int, tok Token) {
	switch tok.Kind {
	case TokenHeadingOpen, TokenParagraphOpen:
		t.interrupt(i, tok)
		t.pending = &leaf{kind: tok.Kind, level: tok.Level}

	case TokenInline:
		if t.pending == nil || t.pending.filled {
			t.log.Warn("inline token outside heading or paragraph", "index", i)
			return
		}
		t.pending.filled = true
		t.emitInline(tok)

	case TokenHeadingClose, TokenParagraphClose:
		if t.pending == nil {
			t.log.Warn("close without open", "index", i, "kind", tok.Kind.String())
			return
		}
		if !t.pending.filled && t.pending.kind == TokenHeadingOpen {
			t.log.Warn("heading without inline content", "index", i)
		}
		t.pending = nil

	case TokenBulletListOpen, TokenOrderedListOpen:
		t.interrupt(i, tok)
		ctx := listContext{kind: listBullet}
		if tok.Kind == TokenOrderedListOpen {
			ctx = listContext{kind: listOrdered, counter: 1}
		}
		t.lists = append(t.lists, ctx)

	case TokenBulletListClose, TokenOrderedListClose:
		t.interrupt(i, tok)
		if len(t.lists) == 0 {
			t.log.Warn("list close without open", "index", i)
		} else {
			t.lists = t.lists[:len(t.lists)-1]
		}
		t.emit(Block{Kind: BlockSpacer})

	case TokenListItemOpen:
		t.interrupt(i, tok)
		item := openItem{}
		if n := len(t.lists); n == 0 {
			t.log.Warn("list item outside list", "index", i)
		} else if t.lists[n-1].kind == listOrdered {
			ordinal := t.lists[n-1].counter
			t.lists[n-1].counter++
			item.ordinal = &ordinal
		}
		t.items = append(t.items, item)

	case TokenListItemClose:
		t.interrupt(i, tok)
		if len(t.items) == 0 {
			t.log.Warn("list item close without open", "index", i)
			return
		}
		item := t.items[len(t.items)-1]
		t.items = t.items[:len(t.items)-1]
		if !item.emitted {
			t.emit(Block{Kind: BlockListItem, Ordinal: item.ordinal})
		}

	case TokenBlockquoteOpen:
		t.interrupt(i, tok)
		t.quoteDeep++
		if t.quoteDeep > 1 {
			t.log.Debug("nested blockquote flattened", "index", i)
		}

	case TokenBlockquoteClose:
		t.interrupt(i, tok)
		if t.quoteDeep == 0 {
			t.log.Warn("blockquote close without open", "index", i)
			return
		}
		t.quoteDeep--

	case TokenCodeBlock, TokenFence:
		t.interrupt(i, tok)
		t.emit(Block{Kind: BlockCodeBlock, Text: tok.Content})

	case TokenHR:
		t.interrupt(i, tok)
		t.emit(Block{Kind: BlockRule})

	default:
		t.log.Debug("skipping unsupported token", "index", i, "node", tok.Content)
	}
}

// interrupt drops a heading or paragraph that never received its close.
func (t *translator) interrupt(i int, tok Token) {
	if t.pending == nil {
		return
	}
	if !t.pending.filled {
		t.log.Warn("block interrupted before inline content",
			"index", i, "open", t.pending.kind.String(), "by", tok.Kind.String())
	}
	t.pending = nil
}

func (t *translator) emitInline(tok Token) {
	if t.quoteDeep > 0 {
		text := inlineText(tok)
		if strings.TrimSpace(text) != "" {
			t.emit(Block{Kind: BlockBlockquote, Text: text})
		}
		return
	}

	if t.pending.kind == TokenHeadingOpen {
		t.emit(Block{Kind: BlockHeading, Level: clampLevel(t.pending.level), Text: inlineText(tok)})
		return
	}

	runs := FormatInline(tok.Children)
	if n := len(t.items); n > 0 && !t.items[n-1].emitted {
		t.items[n-1].emitted = true
		t.emit(Block{Kind: BlockListItem, Ordinal: t.items[n-1].ordinal, Runs: runs})
		return
	}
	if len(runs) == 0 {
		return
	}
	t.emit(Block{Kind: BlockParagraph, Runs: runs, InList: len(t.lists) > 0})
}

func (t *translator) emit(b Block) {
	t.blocks = append(t.blocks, b)
}

func inlineText(tok Token) string {
	if tok.Content != "" {
		return tok.Content
	}
	return plainText(tok.Children)
}

func clampLevel(level int) int {
	switch {
	case level < 1:
		return 1
	case level > 3:
		return 3
	}
	return level
}
