package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conneroisu/opaque/internal/ansi"
	"github.com/conneroisu/opaque/internal/errors"
)

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Convert a file of terminal output to an HTML fragment",
	Long: `Render FILE the way an <opaque-ansi-output> placeholder would be
rendered and print the HTML fragment.

Examples:
  opaque render output_snippets/build.txt
  opaque render dos.log --charset cp437 > dos.html`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().String("charset", "utf-8", "Snippet encoding (utf-8, cp437, iso-8859-1)")
	bindFlags(renderCmd.Flags(), map[string]string{"charset": "render.charset"})
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	return renderSnippet(afero.NewOsFs(), cmd.OutOrStdout(), args[0], cfg.Charset())
}

func renderSnippet(fs afero.Fs, w io.Writer, path string, cs ansi.Charset) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.WrapIO(err, errors.ErrCodeSnippetRead, "unable to read snippet").WithPath(path)
	}
	out, err := ansi.RenderBytes(data, cs)
	if err != nil {
		return errors.WrapIO(err, errors.ErrCodeSnippetRead, "unable to decode snippet").
			WithPath(path).WithContext("charset", string(cs))
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
