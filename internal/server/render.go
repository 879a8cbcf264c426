package server

import (
	"context"

	"github.com/conneroisu/opaque/internal/postprocess"
	"github.com/conneroisu/opaque/internal/posts"
)

// pipeline builds the post processing rewriter for one post. slug names
// the snippet subdirectory used by relative placeholders.
func (s *Server) pipeline(slug string) (*postprocess.Rewriter, error) {
	b := postprocess.NewBuilder(
		postprocess.WithFs(s.fs),
		postprocess.WithSnippetCache(s.snippets),
		postprocess.WithLogger(s.logger),
		postprocess.WithMetrics(s.metrics),
		postprocess.WithCharset(s.config.Charset()),
	)
	if err := b.RewriteLinks(LinkSelector, s.config.StaticURL(), ""); err != nil {
		return nil, err
	}
	if err := b.ConvertAnsi(AnsiSelector, s.config.Site.SnippetPath, slug); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// renderPost returns the post's HTML: its Markdown rendering, cached by
// slug, rewritten by the pipeline. The cache lock is not held while the
// Markdown renders, so two first requests may both render and insert.
func (s *Server) renderPost(ctx context.Context, post *posts.Post) (string, error) {
	body, found := s.postCache.Find(post.Slug)
	if found {
		s.metrics.CacheHit(s.postCache.Name())
		s.logger.Debug(ctx, "Markdown cache hit", "slug", post.Slug)
	} else {
		s.metrics.CacheMiss(s.postCache.Name())
		var err error
		body, err = s.markdown.RenderFile(s.fs, post.Path)
		if err != nil {
			return "", err
		}
		s.postCache.Insert(post.Slug, body)
	}

	rewriter, err := s.pipeline(post.Slug)
	if err != nil {
		return "", err
	}
	return rewriter.Rewrite(ctx, body)
}
