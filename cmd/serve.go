package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conneroisu/opaque/internal/posts"
	"github.com/conneroisu/opaque/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the blog over HTTP",
	Long: `Scan the content directory once and serve the blog.

Rendered posts and converted snippets are cached for the life of the
process; restart the server to pick up edits.

Examples:
  opaque serve                    # Serve on the configured address
  opaque serve --port 9000        # Serve on another port
  opaque serve --host 127.0.0.1   # Only accept local connections`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8000, "Port to serve on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")

	bindFlags(serveCmd.Flags(), map[string]string{
		"port": "server.port",
		"host": "server.host",
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := afero.NewOsFs()
	index, err := posts.NewScanner(fs, logger).Scan(ctx, cfg.Site.ContentPath)
	if err != nil {
		return fmt.Errorf("failed to scan posts: %w", err)
	}

	srv, err := server.New(cfg, index, server.WithFs(fs), server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s at http://%s\n", cfg.Site.Name, cfg.Addr())

	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info(context.Background(), "Server stopped")
	return nil
}
