// Package posts discovers blog posts on disk and renders their Markdown.
//
// A post is any file under the content directory whose first line is "---"
// and which carries a complete YAML front matter block. Everything else is
// ignored, so images and drafts without front matter can live alongside
// posts.
package posts

import (
	"bufio"
	"context"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/conneroisu/opaque/internal/errors"
	"github.com/conneroisu/opaque/internal/logging"
)

// Post is a discovered post.
type Post struct {
	FrontMatter
	// Slug is the post's URL segment and the cache key of its body.
	Slug string
	// Path is the file the post was read from.
	Path string
}

// AuthorOr returns the post's author, or fallback when it names none.
func (p *Post) AuthorOr(fallback Author) Author {
	if p.Author != nil {
		return *p.Author
	}
	return fallback
}

// Scanner discovers posts on a filesystem.
type Scanner struct {
	// fs is the filesystem content is read from
	fs afero.Fs
	// logger reports skipped and duplicate files
	logger logging.Logger
}

// NewScanner creates a scanner over fs.
func NewScanner(fs afero.Fs, logger logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Scanner{fs: fs, logger: logger.WithComponent("posts")}
}

// Scan walks root and indexes every post by slug. When two posts share a
// slug the one walked last wins. A front matter block that is not valid
// YAML fails the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (*Index, error) {
	index := &Index{posts: make(map[string]*Post)}

	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		data, ok, err := s.readFrontMatter(path)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Debug(ctx, "Skipping file without front matter", "path", path)
			return nil
		}

		fm, err := ParseFrontMatter(data)
		if err != nil {
			return errors.WrapIO(err, errors.ErrCodePostRead, "invalid front matter").WithPath(path)
		}

		post := &Post{FrontMatter: fm, Slug: fm.Slug(), Path: path}
		if prev, exists := index.posts[post.Slug]; exists {
			s.logger.Warn(ctx, nil, "Duplicate slug, replacing post",
				"slug", post.Slug, "previous", prev.Path, "path", path)
		}
		s.logger.Debug(ctx, "Indexed post", "slug", post.Slug, "path", path)
		index.posts[post.Slug] = post
		return nil
	})
	if err != nil {
		return nil, errors.WrapIO(err, errors.ErrCodePostRead, "unable to scan content directory").
			WithPath(root)
	}

	s.logger.Info(ctx, "Scanned content directory", "root", root, "posts", index.Len())
	return index, nil
}

// readFrontMatter reads only as far as the closing delimiter.
func (s *Scanner) readFrontMatter(path string) ([]byte, bool, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	return scanFrontMatter(f)
}

func scanFrontMatter(r io.Reader) ([]byte, bool, error) {
	br := bufio.NewReader(r)

	// Decide from the first few bytes: a file that is not a post may be a
	// single line of minified asset.
	head, err := br.Peek(len(frontMatterDelimiter) + 2)
	if err != nil && err != io.EOF {
		return nil, false, err
	}
	if !opensFrontMatter(string(head)) {
		return nil, false, nil
	}
	if _, err := br.ReadString('\n'); err != nil {
		return nil, false, nil
	}

	var block strings.Builder
	for {
		line, err := br.ReadString('\n')
		text := strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if line != "" && text == frontMatterDelimiter {
			return []byte(block.String()), true, nil
		}
		if err == io.EOF {
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		block.WriteString(text)
		block.WriteByte('\n')
	}
}

func opensFrontMatter(head string) bool {
	rest, ok := strings.CutPrefix(head, frontMatterDelimiter)
	return ok && (strings.HasPrefix(rest, "\n") || rest == "\r\n")
}

// Index holds discovered posts by slug. It is built once and only read
// afterwards.
type Index struct {
	posts map[string]*Post
}

// NewIndex builds an index from posts, keyed by their slugs.
func NewIndex(posts ...*Post) *Index {
	index := &Index{posts: make(map[string]*Post, len(posts))}
	for _, p := range posts {
		index.posts[p.Slug] = p
	}
	return index
}

// Get returns the post with the given slug, published or not.
func (i *Index) Get(slug string) (*Post, bool) {
	p, ok := i.posts[slug]
	return p, ok
}

// Len returns the number of indexed posts.
func (i *Index) Len() int {
	return len(i.posts)
}

// All returns every post ordered by slug.
func (i *Index) All() []*Post {
	all := make([]*Post, 0, len(i.posts))
	for _, p := range i.posts {
		all = append(all, p)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].Slug < all[b].Slug })
	return all
}

// Published returns the published posts, newest first. Undated posts sort
// after dated ones.
func (i *Index) Published() []*Post {
	var published []*Post
	for _, p := range i.All() {
		if p.IsPublished() {
			published = append(published, p)
		}
	}
	sort.SliceStable(published, func(a, b int) bool {
		da, db := published[a].Date, published[b].Date
		switch {
		case da == nil:
			return false
		case db == nil:
			return true
		default:
			return da.After(*db)
		}
	})
	return published
}
