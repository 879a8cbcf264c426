package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollectors(reg)
	require.NoError(t, err)

	c.CacheHit("snippets")
	c.CacheHit("snippets")
	c.CacheMiss("snippets")
	c.CacheMiss("posts")
	c.RewriteError()
	c.ObserveRender(3 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.cacheHits.WithLabelValues("snippets")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.cacheMisses.WithLabelValues("posts")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rewriteErrors))

	expected := `
# HELP opaque_rewrite_errors_total HTML rewrites aborted by a handler error.
# TYPE opaque_rewrite_errors_total counter
opaque_rewrite_errors_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "opaque_rewrite_errors_total"))

	count, err := testutil.GatherAndCount(reg, "opaque_ansi_render_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollectors(reg)
	require.NoError(t, err)

	_, err = NewCollectors(reg)
	assert.Error(t, err)
}

func TestNilCollectors(t *testing.T) {
	var c *Collectors
	assert.NotPanics(t, func() {
		c.CacheHit("snippets")
		c.CacheMiss("snippets")
		c.ObserveRender(time.Second)
		c.RewriteError()
	})

	unregistered, err := NewCollectors(nil)
	require.NoError(t, err)
	unregistered.CacheHit("posts")
	assert.Equal(t, 1.0, testutil.ToFloat64(unregistered.cacheHits.WithLabelValues("posts")))
}
