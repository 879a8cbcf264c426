package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/opaque/internal/posts"
)

var postsCmd = &cobra.Command{
	Use:     "posts",
	Aliases: []string{"p"},
	Short:   "List the posts found under the content directory",
	Long: `Scan the content directory and list the posts the server would index,
newest first.

Examples:
  opaque posts                    # Published posts as a table
  opaque posts --all              # Include unpublished posts
  opaque posts -o json            # Output as JSON
  opaque posts -o yaml            # Output as YAML`,
	Args: cobra.NoArgs,
	RunE: runPosts,
}

var (
	postsFormat string
	postsAll    bool
)

func init() {
	rootCmd.AddCommand(postsCmd)

	postsCmd.Flags().StringVarP(&postsFormat, "output", "o", "table", "Output format (table|json|yaml)")
	postsCmd.Flags().BoolVarP(&postsAll, "all", "a", false, "Include unpublished posts")
}

// postRow is one listed post.
type postRow struct {
	Slug      string     `json:"slug" yaml:"slug"`
	Title     string     `json:"title" yaml:"title"`
	Author    string     `json:"author" yaml:"author"`
	Date      *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	Published bool       `json:"published" yaml:"published"`
	Path      string     `json:"path" yaml:"path"`
}

func runPosts(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	index, err := posts.NewScanner(afero.NewOsFs(), logger).Scan(cmd.Context(), cfg.Site.ContentPath)
	if err != nil {
		return fmt.Errorf("failed to scan posts: %w", err)
	}

	list := index.Published()
	if postsAll {
		list = index.All()
	}
	fallback := posts.Author{Name: cfg.Site.Author.Name, Email: cfg.Site.Author.Email}
	return writePosts(cmd.OutOrStdout(), postRows(list, fallback), postsFormat)
}

func postRows(list []*posts.Post, fallback posts.Author) []postRow {
	rows := make([]postRow, 0, len(list))
	for _, p := range list {
		rows = append(rows, postRow{
			Slug:      p.Slug,
			Title:     p.Title,
			Author:    p.AuthorOr(fallback).Name,
			Date:      p.Date,
			Published: p.IsPublished(),
			Path:      p.Path,
		})
	}
	return rows
}

func writePosts(w io.Writer, rows []postRow, format string) error {
	switch strings.ToLower(format) {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(rows)
	case "table":
		return writePostTable(w, rows)
	default:
		return fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", format)
	}
}

func writePostTable(w io.Writer, rows []postRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No posts found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tTITLE\tAUTHOR\tDATE\tPUBLISHED")
	fmt.Fprintln(tw, "----\t-----\t------\t----\t---------")
	for _, row := range rows {
		date := "-"
		if row.Date != nil {
			date = row.Date.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", row.Slug, row.Title, row.Author, date, row.Published)
	}
	return tw.Flush()
}
