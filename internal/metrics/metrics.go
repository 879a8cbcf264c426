// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "opaque"

// Collectors groups the engine's metrics. A nil *Collectors is valid and
// records nothing, so library code can take one unconditionally.
type Collectors struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	renderSeconds prometheus.Histogram
	rewriteErrors prometheus.Counter
}

// NewCollectors creates the collectors and registers them with reg. A nil
// reg skips registration.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Lookups answered from a rendered fragment cache.",
		}, []string{"cache"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Lookups that had to render the fragment.",
		}, []string{"cache"}),
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ansi_render_seconds",
			Help:      "Time spent reading and converting one ANSI snippet.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		rewriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewrite_errors_total",
			Help:      "HTML rewrites aborted by a handler error.",
		}),
	}

	if reg == nil {
		return c, nil
	}
	for _, col := range []prometheus.Collector{c.cacheHits, c.cacheMisses, c.renderSeconds, c.rewriteErrors} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// CacheHit counts a hit in the named cache.
func (c *Collectors) CacheHit(cache string) {
	if c == nil {
		return
	}
	c.cacheHits.WithLabelValues(cache).Inc()
}

// CacheMiss counts a miss in the named cache.
func (c *Collectors) CacheMiss(cache string) {
	if c == nil {
		return
	}
	c.cacheMisses.WithLabelValues(cache).Inc()
}

// ObserveRender records the duration of one snippet conversion.
func (c *Collectors) ObserveRender(d time.Duration) {
	if c == nil {
		return
	}
	c.renderSeconds.Observe(d.Seconds())
}

// RewriteError counts an aborted rewrite.
func (c *Collectors) RewriteError() {
	if c == nil {
		return
	}
	c.rewriteErrors.Inc()
}
