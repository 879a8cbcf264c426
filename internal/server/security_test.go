package server

import (
	"net/http"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/opaque/internal/config"
)

func TestSecurityConfigFromSite(t *testing.T) {
	v := viper.New()
	v.Set("site.url", "https://cdn.example.com/blog/")
	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)

	csp := buildCSPHeader(SecurityConfigFromSite(cfg).CSP)
	assert.Contains(t, csp, "style-src 'self' 'unsafe-inline'")
	assert.Contains(t, csp, "img-src 'self' data: https://cdn.example.com")
	assert.Contains(t, csp, "script-src 'none'")
	assert.Contains(t, csp, "frame-ancestors 'none'")
}

func TestSecurityHeaders(t *testing.T) {
	site := newTestSite(t, nil)

	for _, path := range []string{"/", "/posts/hello-world", "/static/assets/main.css", "/nope"} {
		t.Run(path, func(t *testing.T) {
			resp, _ := site.get(t, path)
			assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
			assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "img-src 'self' data: http://localhost:8000")
		})
	}

	resp, _ := site.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
