package bookcompiler

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

type tokenizer struct {
	src    []byte
	tokens []Token
}

// Tokenize parses markdown and flattens the tree into the token stream the
// translator consumes. Constructs without a token kind (tables, raw HTML
// blocks) become a single unsupported token and their children are not
// visited.
func Tokenize(source string) []Token {
	z := &tokenizer{src: []byte(source)}
	doc := markdown.Parser().Parse(text.NewReader(z.src))
	z.children(doc)
	return z.tokens
}

func (z *tokenizer) push(tok Token) {
	z.tokens = append(z.tokens, tok)
}

func (z *tokenizer) children(n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		z.block(c)
	}
}

func (z *tokenizer) block(n ast.Node) {
	switch node := n.(type) {
	case *ast.Heading:
		z.push(Token{Kind: TokenHeadingOpen, Level: node.Level})
		z.push(z.inline(node))
		z.push(Token{Kind: TokenHeadingClose, Level: node.Level})
	case *ast.Paragraph, *ast.TextBlock:
		z.push(Token{Kind: TokenParagraphOpen})
		z.push(z.inline(node))
		z.push(Token{Kind: TokenParagraphClose})
	case *ast.List:
		openKind, closeKind := TokenBulletListOpen, TokenBulletListClose
		if node.IsOrdered() {
			openKind, closeKind = TokenOrderedListOpen, TokenOrderedListClose
		}
		z.push(Token{Kind: openKind})
		z.children(node)
		z.push(Token{Kind: closeKind})
	case *ast.ListItem:
		z.push(Token{Kind: TokenListItemOpen})
		z.children(node)
		z.push(Token{Kind: TokenListItemClose})
	case *ast.Blockquote:
		z.push(Token{Kind: TokenBlockquoteOpen})
		z.children(node)
		z.push(Token{Kind: TokenBlockquoteClose})
	case *ast.FencedCodeBlock:
		z.push(Token{Kind: TokenFence, Content: z.lines(node)})
	case *ast.CodeBlock:
		z.push(Token{Kind: TokenCodeBlock, Content: z.lines(node)})
	case *ast.ThematicBreak:
		z.push(Token{Kind: TokenHR})
	default:
		z.push(Token{Kind: TokenUnsupported, Content: n.Kind().String()})
	}
}

func (z *tokenizer) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(z.src))
	}
	return b.String()
}

func (z *tokenizer) inline(n ast.Node) Token {
	var children []InlineToken
	var walk func(ast.Node)
	walk = func(parent ast.Node) {
		for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Text:
				children = append(children, InlineToken{Kind: InlineText, Content: string(node.Segment.Value(z.src))})
				if node.SoftLineBreak() || node.HardLineBreak() {
					children = append(children, InlineToken{Kind: InlineText, Content: " "})
				}
			case *ast.String:
				children = append(children, InlineToken{Kind: InlineText, Content: string(node.Value)})
			case *ast.Emphasis:
				openKind, closeKind := InlineEmOpen, InlineEmClose
				if node.Level >= 2 {
					openKind, closeKind = InlineStrongOpen, InlineStrongClose
				}
				children = append(children, InlineToken{Kind: openKind})
				walk(node)
				children = append(children, InlineToken{Kind: closeKind})
			case *ast.AutoLink:
				children = append(children, InlineToken{Kind: InlineText, Content: string(node.Label(z.src))})
			case *ast.Image, *ast.RawHTML:
			default:
				walk(node)
			}
		}
	}
	walk(n)
	trimEdges(children)
	return Token{Kind: TokenInline, Children: children, Content: plainText(children)}
}

// trimEdges strips whitespace at the start of the first text child and the
// end of the last one.
func trimEdges(children []InlineToken) {
	for i := range children {
		if children[i].Kind == InlineText {
			children[i].Content = strings.TrimLeft(children[i].Content, " \t\n")
			if children[i].Content != "" {
				break
			}
		}
	}
	for i := len(children) - 1; i >= 0; i-- {
		if children[i].Kind == InlineText {
			children[i].Content = strings.TrimRight(children[i].Content, " \t\n")
			if children[i].Content != "" {
				break
			}
		}
	}
}
