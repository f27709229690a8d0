package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/opd-ai/bookforge/bookcompiler"
	bookforge "github.com/opd-ai/bookforge/src"
)

func newOutlineCmd(c *cli) *cobra.Command {
	var (
		req   bookforge.OutlineRequest
		width int
	)
	cmd := &cobra.Command{
		Use:   "outline <topic>",
		Short: "Generate a chapter outline for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newTextClient(envConfig(), c.log)
			if err != nil {
				return err
			}
			req.Topic = strings.Join(args, " ")
			outline, err := bookforge.NewGenerator(client, nil, c.log).GenerateOutline(cmd.Context(), req)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, entry := range outline {
				fmt.Fprintf(w, "%d. %s\n", i+1, entry.Title)
				if entry.Description != "" {
					fmt.Fprintln(w, indent(wordwrap.String(entry.Description, width-3), "   "))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Style, "style", bookforge.DefaultStyle, "Writing style")
	cmd.Flags().IntVar(&req.NumChapters, "chapters", bookforge.DefaultNumChapters, "Number of chapters")
	cmd.Flags().StringVar(&req.Description, "description", "", "Extra guidance for the outline")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap descriptions at this column")
	return cmd
}

func newDraftCmd(c *cli) *cobra.Command {
	var (
		req      bookforge.OutlineRequest
		title    string
		subtitle string
		author   string
		out      string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "draft <topic>",
		Short: "Generate a whole book into a directory",
		Long: `Draft generates an outline and then every chapter, and saves the result as
a book directory (book.yaml plus one markdown file per chapter). With
--format the directory is compiled as well.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var exportFormat bookcompiler.Format
			if format != "" {
				f, err := bookcompiler.ParseFormat(format)
				if err != nil {
					return fmt.Errorf("--format %q: %w", format, err)
				}
				exportFormat = f
			}
			cfg := envConfig()
			cfg.OutputDir = out
			client, err := newTextClient(cfg, c.log)
			if err != nil {
				return err
			}

			req.Topic = strings.Join(args, " ")
			progress := lineProgress{w: cmd.OutOrStdout()}
			gen := bookforge.NewGenerator(client, nil, c.log)
			draft, err := bookforge.DraftBook(cmd.Context(), gen, req, title, subtitle, author, progress)
			if err != nil {
				if len(draft.Chapters) > 0 {
					if saveErr := bookforge.SaveToFiles(draft, cfg.OutputDir); saveErr == nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Partial draft saved to %s\n", cfg.OutputDir)
					}
				}
				return err
			}
			if err := bookforge.SaveToFiles(draft, cfg.OutputDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Draft saved to %s\n", cfg.OutputDir)

			if exportFormat == "" {
				return nil
			}
			res, err := bookcompiler.NewBookCompiler(cfg.OutputDir, c.log).Compile(draft.Book(), exportFormat)
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.OutputDir, res.Filename)
			if err := os.WriteFile(path, res.Data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Written: %s (%d bytes)\n", path, len(res.Data))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Book title (default: the topic)")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "Book subtitle")
	cmd.Flags().StringVar(&author, "author", "Anonymous", "Author name")
	cmd.Flags().StringVar(&req.Style, "style", bookforge.DefaultStyle, "Writing style")
	cmd.Flags().IntVar(&req.NumChapters, "chapters", bookforge.DefaultNumChapters, "Number of chapters")
	cmd.Flags().StringVar(&req.Description, "description", "", "Extra guidance for the outline")
	cmd.Flags().StringVar(&out, "out", "book", "Directory the draft is written to")
	cmd.Flags().StringVar(&format, "format", "", `Also compile the draft: "docx" or "pdf"`)
	return cmd
}

func newCoverCmd(c *cli) *cobra.Command {
	var (
		title    string
		subtitle string
		prompt   string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "cover",
		Short: "Generate a cover image with the AI Horde",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && prompt == "" {
				return fmt.Errorf("either --title or --prompt is required")
			}
			images, err := newImageClient(envConfig())
			if err != nil {
				return err
			}
			data, err := bookforge.GenerateCover(images, prompt, title, subtitle, lineProgress{w: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			if out == "" {
				ext, err := bookforge.ImageExt(data)
				if err != nil {
					return err
				}
				out = "cover" + ext
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			c.log.Info("cover written", "path", out, "bytes", len(data))
			fmt.Fprintf(cmd.OutOrStdout(), "Written: %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Book title the prompt is derived from")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "Book subtitle")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Explicit image prompt")
	cmd.Flags().StringVar(&out, "out", "", "Output file (default: cover.<ext>)")
	return cmd
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
