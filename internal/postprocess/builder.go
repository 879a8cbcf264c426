// Package postprocess rewrites rendered post HTML: it points resource
// links at the site's static host and replaces ANSI output placeholders
// with converted terminal output.
//
// A Builder collects selector bindings and validates them up front; Build
// freezes them into a Rewriter that is applied once per request.
package postprocess

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/spf13/afero"

	"github.com/conneroisu/opaque/internal/ansi"
	"github.com/conneroisu/opaque/internal/cache"
	"github.com/conneroisu/opaque/internal/errors"
	"github.com/conneroisu/opaque/internal/logging"
	"github.com/conneroisu/opaque/internal/metrics"
)

// Builder accumulates RewriteLinks and ConvertAnsi registrations.
type Builder struct {
	fs       afero.Fs
	snippets *cache.LRU
	logger   logging.Logger
	metrics  *metrics.Collectors
	charset  ansi.Charset

	links   []binding
	snippet []binding
}

// Option configures a Builder.
type Option func(*Builder)

// WithFs sets the filesystem snippets are read from. Defaults to the OS
// filesystem.
func WithFs(fs afero.Fs) Option {
	return func(b *Builder) { b.fs = fs }
}

// WithSnippetCache sets the cache converted snippets are stored in.
// Defaults to the process-wide cache.Snippets().
func WithSnippetCache(c *cache.LRU) Option {
	return func(b *Builder) { b.snippets = c }
}

// WithLogger sets the logger handlers report to.
func WithLogger(l logging.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithMetrics sets the collectors cache and render metrics are recorded in.
func WithMetrics(m *metrics.Collectors) Option {
	return func(b *Builder) { b.metrics = m }
}

// WithCharset sets the encoding snippet files are decoded from.
func WithCharset(cs ansi.Charset) Option {
	return func(b *Builder) { b.charset = cs }
}

// NewBuilder returns an empty Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		fs:      afero.NewOsFs(),
		logger:  logging.NewNopLogger(),
		charset: ansi.CharsetUTF8,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.snippets == nil {
		b.snippets = cache.Snippets()
	}
	return b
}

// RewriteLinks registers a handler that prefixes attribute on every element
// matching selector with targetURL. An empty attribute is taken from a
// selector of the form tag[attribute].
func (b *Builder) RewriteLinks(selector, targetURL, attribute string) error {
	match, err := compileSelector(selector)
	if err != nil {
		return err
	}
	if attribute == "" {
		attribute = deriveAttribute(selector)
	}
	if attribute == "" {
		return errors.NewConfigError(errors.ErrCodeInvalidSelector,
			"rewrite_links: an attribute could not be derived from selector").
			WithContext("selector", selector)
	}

	h := &rewriteLinks{
		targetURL: targetURL,
		attribute: attribute,
		logger:    b.logger.WithComponent("rewrite_links"),
	}
	b.links = append(b.links, binding{selector: selector, match: match, handle: h.handle})
	return nil
}

// ConvertAnsi registers a handler that replaces every element matching
// selector with the rendered contents of the file named by its source
// attribute. sourceDirectory must exist on the Builder's filesystem.
func (b *Builder) ConvertAnsi(selector, sourceDirectory, subdirectory string) error {
	match, err := compileSelector(selector)
	if err != nil {
		return err
	}
	exists, err := afero.DirExists(b.fs, sourceDirectory)
	if err != nil {
		return errors.WrapConfig(err, errors.ErrCodeSourceDirMissing,
			"convert_ansi: cannot stat source directory").WithPath(sourceDirectory)
	}
	if !exists {
		return errors.NewConfigError(errors.ErrCodeSourceDirMissing,
			"convert_ansi: source directory does not exist").WithPath(sourceDirectory)
	}

	h := &convertAnsi{
		fs:           b.fs,
		directory:    sourceDirectory,
		subdirectory: subdirectory,
		cache:        b.snippets,
		charset:      b.charset,
		logger:       b.logger.WithComponent("convert_ansi"),
		metrics:      b.metrics,
	}
	b.snippet = append(b.snippet, binding{selector: selector, match: match, handle: h.handle})
	return nil
}

// Build freezes the registrations into a Rewriter. Link rewriting bindings
// run before ANSI conversion bindings, each group in registration order.
func (b *Builder) Build() *Rewriter {
	bindings := make([]binding, 0, len(b.links)+len(b.snippet))
	bindings = append(bindings, b.links...)
	bindings = append(bindings, b.snippet...)
	return &Rewriter{
		bindings: bindings,
		logger:   b.logger,
		metrics:  b.metrics,
	}
}

func compileSelector(selector string) (cascadia.Selector, error) {
	match, err := cascadia.Compile(selector)
	if err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeInvalidSelector,
			fmt.Sprintf("invalid selector %q", selector))
	}
	return match, nil
}

// deriveAttribute returns "src" for "img[src]" and "" when the selector has
// no attribute part.
func deriveAttribute(selector string) string {
	_, rest, found := strings.Cut(selector, "[")
	if !found {
		return ""
	}
	name, _, _ := strings.Cut(rest, "]")
	if i := strings.IndexAny(name, "~|^$*="); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}
