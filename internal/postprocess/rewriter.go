package postprocess

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/opaque/internal/errors"
	"github.com/conneroisu/opaque/internal/logging"
	"github.com/conneroisu/opaque/internal/metrics"
)

var allElements = cascadia.MustCompile("*")

// Handler mutates one matched element.
type Handler func(ctx context.Context, el *Element) error

type binding struct {
	selector string
	match    cascadia.Selector
	handle   Handler
}

// Rewriter applies an ordered list of selector bindings to HTML fragments.
// A Rewriter holds no per-call state and may be shared.
type Rewriter struct {
	bindings []binding
	logger   logging.Logger
	metrics  *metrics.Collectors
}

// RewriteString rewrites input without a request context.
func (r *Rewriter) RewriteString(input string) (string, error) {
	return r.Rewrite(context.Background(), input)
}

// Rewrite parses input as a body fragment and visits its elements in
// document order. Each element is offered to every binding whose selector
// matches it, in binding order, until one of them replaces it. Elements
// removed by a replacement are not visited, and neither is the inserted
// markup. The first handler error aborts the rewrite.
func (r *Rewriter) Rewrite(ctx context.Context, input string) (string, error) {
	container := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(input), container)
	if err != nil {
		r.metrics.RewriteError()
		return "", errors.NewRenderError(errors.ErrCodeRewrite, "unable to parse HTML", err)
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	doc := goquery.NewDocumentFromNode(container)
	for _, n := range doc.FindMatcher(allElements).Nodes {
		for _, b := range r.bindings {
			if !attached(n, container) {
				break
			}
			if !b.match.Match(n) {
				continue
			}
			el := &Element{sel: doc.FindNodes(n), node: n}
			if err := b.handle(ctx, el); err != nil {
				r.metrics.RewriteError()
				r.logger.Error(ctx, err, "Rewrite aborted", "selector", b.selector)
				return "", err
			}
		}
	}

	out, err := doc.Html()
	if err != nil {
		r.metrics.RewriteError()
		return "", errors.NewRenderError(errors.ErrCodeRewrite, "unable to render HTML", err)
	}
	return out, nil
}

// attached reports whether n is still inside root.
func attached(n, root *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// Element is the view of a matched element handed to a Handler.
type Element struct {
	sel  *goquery.Selection
	node *html.Node
}

// TagName returns the lower-case element name.
func (e *Element) TagName() string {
	return e.node.Data
}

// GetAttribute returns the value of name and whether it is present.
func (e *Element) GetAttribute(name string) (string, bool) {
	return e.sel.Attr(name)
}

// HasAttribute reports whether name is present, with or without a value.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.sel.Attr(name)
	return ok
}

// SetAttribute sets name to value.
func (e *Element) SetAttribute(name, value string) {
	e.sel.SetAttr(name, value)
}

// Replace swaps the element and its contents for the given markup.
func (e *Element) Replace(markup string) {
	e.sel.ReplaceWithHtml(markup)
}
