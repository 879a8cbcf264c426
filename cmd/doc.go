// Package cmd provides the command-line interface for opaque.
//
// # Available Commands
//
//   - serve: Serve the blog over HTTP
//   - render: Convert a file of terminal output to an HTML fragment
//   - posts: List the posts found under the content directory
//   - version: Show version information
//
// # Configuration
//
// Configuration is read from, highest priority first:
//  1. Command-line flags (--port, --host, --charset, --log-level)
//  2. OPAQUE_ environment variables (OPAQUE_SERVER_PORT, OPAQUE_SITE_URL, ...)
//  3. The config file: --config, else OPAQUE_CONFIG_FILE, else .opaque.yml
//     in the working directory
//  4. Built-in defaults
//
// # Command Examples
//
//	// Serve the site in the current directory
//	opaque serve --port 8000
//
//	// Preview a captured build log
//	opaque render output_snippets/build.txt --charset cp437
//
//	// Show every post, including unpublished ones, as JSON
//	opaque posts --all -o json
package cmd
