// Package internal contains the core implementation packages for opaque.
//
// # Package Organization
//
//   - ansi: SGR escape parsing and conversion of terminal output to HTML
//   - cache: Fixed-capacity LRU caches for rendered fragments
//   - postprocess: HTML rewriting of rendered posts (links, ANSI snippets)
//   - posts: Post discovery, front matter and Markdown rendering
//   - server: HTTP routes, page chrome and operational endpoints
//   - config: Viper-backed configuration with validation
//   - errors: Typed errors with codes, context and HTTP status mapping
//   - logging: Structured logging over log/slog
//   - metrics: Prometheus collectors for caches and rendering
//   - version: Build metadata
//
// # Request Flow
//
// A post request looks up the post by slug, renders its Markdown (cached by
// slug), then runs the HTML through a postprocess.Rewriter built for that
// post. The rewriter points image links at the static host and replaces
// every <opaque-ansi-output> placeholder with its snippet converted by the
// ansi package, caching each conversion.
//
// # Security Considerations
//
//   - Snippet sources are resolved below the snippet directory only
//   - Static files are served from a base path filesystem
//   - Config validation rejects traversal in configured paths
//   - Error pages never include internal error details
package internal
