package server

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/conneroisu/opaque/internal/config"
	"github.com/conneroisu/opaque/internal/posts"
)

// DateLayout formats post dates, e.g. "Mar  4, 2023".
const DateLayout = "Jan _2, 2006"

// RecentPosts is how many posts the front page lists.
const RecentPosts = 5

// page collects what every page shares.
type page struct {
	site  *config.Config
	title string
	body  templ.Component
}

// writer accumulates the first write error so components read as straight
// line markup.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) component(ctx context.Context, c templ.Component) {
	if w.err == nil {
		w.err = c.Render(ctx, w.w)
	}
}

func layout(p page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw(`<link rel="stylesheet" href="/static/assets/main.css">`)
		w.raw(`<link rel="stylesheet" href="/highlight.css">`)
		w.raw(`<title>`)
		w.text(p.title)
		w.raw(`</title></head><body>`)
		w.component(ctx, header(p.site))
		w.raw(`<main><div class="content">`)
		w.component(ctx, p.body)
		w.raw(`</div></main>`)
		w.component(ctx, footer(p.site))
		w.raw(`</body></html>`)
		return w.err
	})
}

func header(site *config.Config) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<header><div class="content"><a id="site_title" href="/">`)
		w.text(site.Site.Name)
		w.raw(`</a><nav id="site_nav">`)
		for _, link := range site.Site.Nav {
			w.raw(`<a href="`)
			w.text(string(templ.URL(link.URL)))
			w.raw(`">`)
			w.text(link.Name)
			w.raw(`</a>`)
		}
		w.raw(`</nav></div></header>`)
		return w.err
	})
}

func footer(site *config.Config) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		author := site.Site.Author
		w := &writer{w: out}
		w.raw(`<footer><div class="content"><h2>`)
		w.text(site.Site.Name)
		w.raw(`</h2><div><div><ul class="no_list_style"><li>`)
		w.text(author.Name)
		w.raw(`</li>`)
		if author.Email != "" {
			w.raw(`<li><a href="`)
			w.text(string(templ.URL("mailto:" + author.Email)))
			w.raw(`">`)
			w.text(author.Email)
			w.raw(`</a></li>`)
		}
		w.raw(`</ul></div><div><ul class="no_list_style"></ul></div><div><p>`)
		w.text(site.Site.Description)
		w.raw(`</p></div></div></div></footer>`)
		return w.err
	})
}

// byline renders "Mar  4, 2023, by Jo" or "By Jo" for undated posts.
func byline(post *posts.Post, fallback posts.Author) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		name := post.AuthorOr(fallback).Name
		w.raw(`<small>`)
		if post.Date != nil {
			w.text(post.Date.Format(DateLayout))
			w.raw(`, by `)
		} else {
			w.raw(`By `)
		}
		w.text(name)
		w.raw(`</small>`)
		return w.err
	})
}

func postList(heading string, list []*posts.Post, fallback posts.Author) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<h2>`)
		w.text(heading)
		w.raw(`</h2>`)
		for _, post := range list {
			w.raw(`<div class="post">`)
			w.component(ctx, byline(post, fallback))
			w.raw(`<h3><a href="`)
			w.text(string(templ.URL("/posts/" + post.Slug)))
			w.raw(`">`)
			w.text(post.Title)
			w.raw(`</a></h3></div>`)
		}
		return w.err
	})
}

// postBody renders a post around its already rewritten HTML.
func postBody(post *posts.Post, fallback posts.Author, content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<h1>`)
		w.text(post.Title)
		w.raw(`</h1>`)
		w.component(ctx, byline(post, fallback))
		w.component(ctx, templ.Raw(content))
		return w.err
	})
}

func errorBody(status int, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<h1>`)
		w.text(fmt.Sprintf("%d", status))
		w.raw(`</h1><p>`)
		w.text(message)
		w.raw(`</p>`)
		return w.err
	})
}
