package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opd-ai/bookforge/bookcompiler"
)

func newExportCmd(c *cli) *cobra.Command {
	var (
		dir    string
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Compile a book directory to DOCX or PDF",
		Long: `Export reads book.yaml and the markdown chapters in --dir and writes the
compiled document. A cover path in book.yaml is resolved against --dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := bookcompiler.ParseFormat(format)
			if err != nil {
				return fmt.Errorf("--format %q: %w", format, err)
			}
			book, err := bookcompiler.LoadBookDir(dir)
			if err != nil {
				return err
			}
			res, err := bookcompiler.NewBookCompiler(dir, c.log).Compile(book, f)
			if err != nil {
				return err
			}
			if out == "" {
				out = res.Filename
			}
			if d := filepath.Dir(out); d != "." {
				if err := os.MkdirAll(d, 0o755); err != nil {
					return fmt.Errorf("creating output directory: %w", err)
				}
			}
			if err := os.WriteFile(out, res.Data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Written: %s (%d bytes)\n", out, len(res.Data))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Book directory containing book.yaml")
	cmd.Flags().StringVar(&format, "format", "docx", `Output format: "docx" or "pdf"`)
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: derived from the title)")
	return cmd
}
