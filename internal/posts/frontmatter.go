package posts

import (
	"bytes"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// Author identifies who wrote a post.
type Author struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// FrontMatter is the YAML block at the top of a post.
type FrontMatter struct {
	Title     string     `yaml:"title"`
	Author    *Author    `yaml:"author,omitempty"`
	Date      *time.Time `yaml:"date,omitempty"`
	Published *bool      `yaml:"published,omitempty"`
}

var lower = cases.Lower(language.Und)

// Slug returns the URL segment for the post: the lower-cased title with
// spaces replaced by dashes.
func (f FrontMatter) Slug() string {
	return strings.ReplaceAll(lower.String(f.Title), " ", "-")
}

// IsPublished reports whether the post is listed. Posts are published
// unless they say otherwise.
func (f FrontMatter) IsPublished() bool {
	return f.Published == nil || *f.Published
}

// ParseFrontMatter decodes a YAML front matter block.
func ParseFrontMatter(data []byte) (FrontMatter, error) {
	var fm FrontMatter
	if err := yaml.Unmarshal(data, &fm); err != nil {
		return FrontMatter{}, err
	}
	return fm, nil
}

// SplitFrontMatter separates a "---" delimited front matter block from the
// document body. ok is false when src does not open with a complete block.
func SplitFrontMatter(src []byte) (frontMatter, body []byte, ok bool) {
	first, rest, _ := cutLine(src)
	if string(first) != frontMatterDelimiter {
		return nil, src, false
	}

	start := len(src) - len(rest)
	for len(rest) > 0 {
		var line []byte
		lineStart := len(src) - len(rest)
		line, rest, _ = cutLine(rest)
		if string(line) == frontMatterDelimiter {
			return src[start:lineStart], rest, true
		}
	}
	return nil, src, false
}

// cutLine splits off the first line, dropping its terminator.
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte{'\n'})
	return bytes.TrimSuffix(line, []byte{'\r'}), rest, found
}
