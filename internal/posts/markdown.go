package posts

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/conneroisu/opaque/internal/errors"
)

// HeadingIDPrefix is prepended to generated heading anchors so they cannot
// collide with ids used by the page chrome.
const HeadingIDPrefix = "md-header-"

// DefaultCodeStyle is the chroma style used when none is configured.
const DefaultCodeStyle = "monokai"

// Markdown converts post bodies to HTML.
type Markdown struct {
	md    goldmark.Markdown
	style string
}

// NewMarkdown creates a converter highlighting code blocks with the named
// chroma style. Raw HTML is passed through so post processing placeholders
// such as <opaque-ansi-output> survive.
func NewMarkdown(codeStyle string) *Markdown {
	if codeStyle == "" {
		codeStyle = DefaultCodeStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,            // Tables, strikethrough, autolinks, task lists
			extension.DefinitionList, // Term / definition pairs
			highlighting.NewHighlighting(
				highlighting.WithStyle(codeStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // colors come from the stylesheet served by StyleCSS
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
	return &Markdown{md: md, style: codeStyle}
}

// Render converts src to HTML, dropping a leading front matter block.
func (m *Markdown) Render(src []byte) (string, error) {
	if _, body, ok := SplitFrontMatter(src); ok {
		src = body
	}

	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	if err := m.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return "", errors.WrapRender(err, errors.ErrCodeMarkdown, "unable to render markdown")
	}
	return buf.String(), nil
}

// RenderFile reads path from fs and renders it.
func (m *Markdown) RenderFile(fs afero.Fs, path string) (string, error) {
	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", errors.WrapIO(err, errors.ErrCodePostRead, "unable to read post").WithPath(path)
	}
	out, err := m.Render(src)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// StyleCSS writes the stylesheet for the highlighting classes.
func (m *Markdown) StyleCSS(w io.Writer) error {
	style := styles.Get(m.style)
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(w, style); err != nil {
		return fmt.Errorf("write %s stylesheet: %w", m.style, err)
	}
	return nil
}

// headingIDs generates prefixed, per-document unique heading anchors.
type headingIDs struct {
	seen map[string]int
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{seen: make(map[string]int)}
}

// Generate turns "Hello, World!" into "md-header-hello-world".
func (h *headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	var b bytes.Buffer
	b.WriteString(HeadingIDPrefix)
	dash := false
	for _, r := range string(value) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > len(HeadingIDPrefix) {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '_' || unicode.IsSpace(r):
			dash = true
		}
	}
	if b.Len() == len(HeadingIDPrefix) {
		b.WriteString("heading")
	}

	id := b.String()
	n := h.seen[id]
	h.seen[id] = n + 1
	if n > 0 {
		id += "-" + strconv.Itoa(n)
	}
	return []byte(id)
}

// Put records an id set explicitly in the document.
func (h *headingIDs) Put(value []byte) {
	h.seen[string(value)]++
}
