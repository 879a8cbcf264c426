package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"

	"github.com/conneroisu/opaque/internal/errors"
	"github.com/conneroisu/opaque/internal/logging"
	"github.com/conneroisu/opaque/internal/posts"
	"github.com/conneroisu/opaque/internal/version"
)

func (s *Server) siteAuthor() posts.Author {
	return posts.Author{Name: s.config.Site.Author.Name, Email: s.config.Site.Author.Email}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	templ.Handler(layout(page{site: s.config, title: title, body: body})).ServeHTTP(w, r)
}

// handleIndex lists the most recent posts.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list := s.index.Published()
	if len(list) > RecentPosts {
		list = list[:RecentPosts]
	}
	s.render(w, r, s.config.Site.Name, postList("Recent Posts", list, s.siteAuthor()))
}

// handlePosts lists every published post.
func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "Post Index", postList("Posts", s.index.Published(), s.siteAuthor()))
}

// handlePost renders one post. Unpublished posts are unlisted, not hidden.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, ok := s.index.Get(slug)
	if !ok {
		s.writeError(w, r, errors.NewNotFoundError(errors.ErrCodePostNotFound, "no post with this slug").
			WithContext("slug", slug))
		return
	}

	content, err := s.renderPost(r.Context(), post)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.render(w, r, post.Title, postBody(post, s.siteAuthor(), content))
}

// handleHighlightCSS serves the stylesheet for highlighted code blocks.
func (s *Server) handleHighlightCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := s.markdown.StyleCSS(w); err != nil {
		s.logger.Error(r.Context(), err, "Failed to write highlight stylesheet")
	}
}

// handleHealth returns the server health status for health checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	postStats := s.postCache.Stats()
	snippetStats := s.snippets.Stats()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.Get().Short(),
		"posts":     s.index.Len(),
		"caches": map[string]interface{}{
			postStats.Name:    cacheHealth(postStats.Len, postStats.Capacity, postStats.HitRate()),
			snippetStats.Name: cacheHealth(snippetStats.Len, snippetStats.Capacity, snippetStats.HitRate()),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Error(r.Context(), err, "Failed to encode health response")
	}
}

func cacheHealth(entries, capacity int, hitRate float64) map[string]interface{} {
	return map[string]interface{}{
		"entries":  entries,
		"capacity": capacity,
		"hit_rate": hitRate,
	}
}

// staticHandler serves files below the static path. Requests cannot leave
// it: the base path filesystem rejects anything that resolves outside.
func (s *Server) staticHandler() http.Handler {
	root := afero.NewBasePathFs(s.fs, s.config.Site.StaticPath)
	files := http.FileServer(afero.NewHttpFs(root))
	return http.StripPrefix("/static", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			s.handleNotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, errors.NewNotFoundError(errors.ErrCodePostNotFound, "no such page"))
}

// writeError logs err in full and answers with a generic page for its
// status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	path := logging.SanitizeForLog(r.URL.Path)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), err, "Request failed", "path", path, "status", status)
	} else {
		s.logger.Debug(r.Context(), "Request rejected", "path", path, "status", status, "error", err.Error())
	}

	message := http.StatusText(status)
	component := layout(page{site: s.config, title: message, body: errorBody(status, message)})
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}
