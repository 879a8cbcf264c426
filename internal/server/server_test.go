package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/opaque/internal/cache"
	"github.com/conneroisu/opaque/internal/config"
	"github.com/conneroisu/opaque/internal/errors"
	"github.com/conneroisu/opaque/internal/posts"
)

const helloPost = `---
title: Hello World
date: 2023-03-04T10:00:00Z
---
Some text.

![logo](logo.png)

<opaque-ansi-output source="build.txt">
</opaque-ansi-output>

<opaque-ansi-output source="run.txt" relative>
</opaque-ansi-output>
`

type testSite struct {
	fs        afero.Fs
	server    *Server
	handler   http.Handler
	postCache *cache.LRU
}

func newTestSite(t *testing.T, extra map[string]string) *testSite {
	t.Helper()

	files := map[string]string{
		"content/hello.md":                    helloPost,
		"content/draft.md":                    "---\ntitle: Secret Draft\npublished: false\n---\nnot listed\n",
		"content/notes.txt":                   "plain file",
		"output_snippets/build.txt":           "\x1b[1mbuilt\x1b[0m ok",
		"output_snippets/hello-world/run.txt": "\x1b[32mran",
		"static/assets/main.css":              "body { color: black; }",
	}
	for name, content := range extra {
		files[name] = content
	}

	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}

	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)

	index, err := posts.NewScanner(fs, nil).Scan(context.Background(), cfg.Site.ContentPath)
	require.NoError(t, err)

	postCache := cache.New("posts", cache.PostCapacity)
	srv, err := New(cfg, index,
		WithFs(fs),
		WithCaches(postCache, cache.New("snippets", cache.SnippetCapacity)),
	)
	require.NoError(t, err)

	return &testSite{fs: fs, server: srv, handler: srv.Handler(), postCache: postCache}
}

func (s *testSite) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestPostPage(t *testing.T) {
	site := newTestSite(t, nil)

	resp, body := site.get(t, "/posts/hello-world")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	assert.Contains(t, body, "<title>Hello World</title>")
	assert.Contains(t, body, "<h1>Hello World</h1>")
	assert.Contains(t, body, "<small>Mar  4, 2023, by Anonymous</small>")
	assert.Contains(t, body, `src="http://localhost:8000/static/logo.png"`)
	assert.Contains(t, body, `<pre class="ansi_output"><code><strong>built</strong> ok</code></pre>`)
	assert.Contains(t, body, `<span style="color: var(--color-green)">ran</span>`)
	assert.NotContains(t, body, "opaque-ansi-output")
}

func TestPostPageUsesCache(t *testing.T) {
	site := newTestSite(t, nil)

	_, first := site.get(t, "/posts/hello-world")
	require.NoError(t, site.fs.Remove("content/hello.md"))
	resp, second := site.get(t, "/posts/hello-world")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first, second)
	stats := site.postCache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestPostPageErrors(t *testing.T) {
	t.Run("unknown slug", func(t *testing.T) {
		site := newTestSite(t, nil)
		resp, body := site.get(t, "/posts/nope")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Contains(t, body, "Not Found")
	})

	t.Run("unpublished posts are reachable", func(t *testing.T) {
		site := newTestSite(t, nil)
		resp, body := site.get(t, "/posts/secret-draft")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "not listed")
	})

	t.Run("missing snippet is a generic server error", func(t *testing.T) {
		site := newTestSite(t, map[string]string{
			"content/broken.md": "---\ntitle: Broken\n---\n<opaque-ansi-output source=\"gone.txt\">\n</opaque-ansi-output>\n",
		})
		resp, body := site.get(t, "/posts/broken")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, body, "Internal Server Error")
		assert.NotContains(t, body, "gone.txt")
	})

	t.Run("escaping snippet is forbidden", func(t *testing.T) {
		site := newTestSite(t, map[string]string{
			"content/sneaky.md": "---\ntitle: Sneaky\n---\n<opaque-ansi-output source=\"../content/hello.md\">\n</opaque-ansi-output>\n",
		})
		resp, _ := site.get(t, "/posts/sneaky")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestIndexPages(t *testing.T) {
	site := newTestSite(t, nil)

	for _, path := range []string{"/", "/posts"} {
		t.Run(path, func(t *testing.T) {
			resp, body := site.get(t, path)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, `<a href="/posts/hello-world">Hello World</a>`)
			assert.NotContains(t, body, "Secret Draft")
			assert.Contains(t, body, `<a id="site_title" href="/">Enigma</a>`)
			assert.Contains(t, body, `<a href="/posts">Posts</a>`)
		})
	}
}

func TestIndexLimitsRecentPosts(t *testing.T) {
	extra := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		extra["content/"+name+".md"] = "---\ntitle: Post " + name + "\n---\n"
	}
	site := newTestSite(t, extra)

	_, index := site.get(t, "/")
	assert.Equal(t, RecentPosts, strings.Count(index, `<div class="post">`))

	_, all := site.get(t, "/posts")
	assert.Equal(t, 7, strings.Count(all, `<div class="post">`))
}

func TestStatic(t *testing.T) {
	site := newTestSite(t, nil)

	resp, body := site.get(t, "/static/assets/main.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "body { color: black; }", body)

	resp, _ = site.get(t, "/static/assets/")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = site.get(t, "/static/missing.css")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = site.get(t, "/static/../content/hello.md")
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "title: Hello World")
}

func TestOperationalEndpoints(t *testing.T) {
	site := newTestSite(t, nil)
	site.get(t, "/posts/hello-world")

	t.Run("health", func(t *testing.T) {
		resp, body := site.get(t, "/health")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var health map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(body), &health))
		assert.Equal(t, "healthy", health["status"])
		assert.Equal(t, float64(2), health["posts"])
		assert.Contains(t, health["caches"], "snippets")
	})

	t.Run("metrics", func(t *testing.T) {
		resp, body := site.get(t, "/metrics")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `opaque_cache_misses_total{cache="snippets"} 2`)
		assert.Contains(t, body, `opaque_cache_misses_total{cache="posts"} 1`)
		assert.Contains(t, body, "opaque_ansi_render_seconds_count 2")
	})

	t.Run("highlight stylesheet", func(t *testing.T) {
		resp, body := site.get(t, "/highlight.css")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
		assert.Contains(t, body, ".chroma")
	})
}

func TestNewRequiresSnippetDirectory(t *testing.T) {
	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)

	_, err = New(cfg, posts.NewIndex(), WithFs(afero.NewMemMapFs()))
	require.Error(t, err)
	assert.True(t, errors.HasErrorCode(err, errors.ErrCodeSourceDirMissing))
}
