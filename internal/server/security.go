package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/conneroisu/opaque/internal/config"
)

// CSPConfig holds the Content Security Policy directives the pages need.
type CSPConfig struct {
	DefaultSrc     []string
	StyleSrc       []string
	ImgSrc         []string
	ScriptSrc      []string
	ObjectSrc      []string
	FrameAncestors []string
	BaseURI        []string
}

// SecurityConfig holds the response headers added to every request.
type SecurityConfig struct {
	CSP            *CSPConfig
	XFrameOptions  string
	ReferrerPolicy string
}

// SecurityConfigFromSite builds the headers for a site. Converted snippets
// carry inline style attributes and post images are rewritten to the
// static URL, which may live on another origin.
func SecurityConfigFromSite(cfg *config.Config) *SecurityConfig {
	imgSrc := []string{"'self'", "data:"}
	if u, err := url.Parse(cfg.StaticURL()); err == nil && u.Host != "" {
		imgSrc = append(imgSrc, u.Scheme+"://"+u.Host)
	}

	return &SecurityConfig{
		CSP: &CSPConfig{
			DefaultSrc:     []string{"'self'"},
			StyleSrc:       []string{"'self'", "'unsafe-inline'"},
			ImgSrc:         imgSrc,
			ScriptSrc:      []string{"'none'"},
			ObjectSrc:      []string{"'none'"},
			FrameAncestors: []string{"'none'"},
			BaseURI:        []string{"'self'"},
		},
		XFrameOptions:  "DENY",
		ReferrerPolicy: "strict-origin-when-cross-origin",
	}
}

// SecurityMiddleware adds the configured security headers to every response.
func SecurityMiddleware(secConfig *SecurityConfig) func(http.Handler) http.Handler {
	csp := ""
	if secConfig.CSP != nil {
		csp = buildCSPHeader(secConfig.CSP)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if csp != "" {
				h.Set("Content-Security-Policy", csp)
			}
			if secConfig.XFrameOptions != "" {
				h.Set("X-Frame-Options", secConfig.XFrameOptions)
			}
			if secConfig.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", secConfig.ReferrerPolicy)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")

			next.ServeHTTP(w, r)
		})
	}
}

// buildCSPHeader constructs the Content-Security-Policy header value
func buildCSPHeader(csp *CSPConfig) string {
	var directives []string

	addDirective := func(name string, values []string) {
		if len(values) > 0 {
			directives = append(directives, fmt.Sprintf("%s %s", name, strings.Join(values, " ")))
		}
	}

	addDirective("default-src", csp.DefaultSrc)
	addDirective("script-src", csp.ScriptSrc)
	addDirective("style-src", csp.StyleSrc)
	addDirective("img-src", csp.ImgSrc)
	addDirective("object-src", csp.ObjectSrc)
	addDirective("frame-ancestors", csp.FrameAncestors)
	addDirective("base-uri", csp.BaseURI)

	return strings.Join(directives, "; ")
}
