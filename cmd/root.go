package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/opd-ai/bookforge/logger"
	bookforge "github.com/opd-ai/bookforge/src"
)

var errNoAPIKey = errors.New("CLAUDE_API_KEY is not set")

// Client constructors are variables so tests can swap in fakes.
var (
	newTextClient = func(cfg bookforge.Config, log *logger.Logger) (bookforge.Client, error) {
		if cfg.APIKey == "" {
			return nil, errNoAPIKey
		}
		return bookforge.NewClaudeClient(cfg.APIKey, cfg.MaxRetries, log), nil
	}
	newImageClient = func(cfg bookforge.Config) (bookforge.ImageClient, error) {
		if cfg.HordeKey == "" {
			return nil, errors.New("HORDE_API_KEY is not set")
		}
		return bookforge.NewHordeClient(cfg.HordeKey), nil
	}
)

// cli is the state shared by every subcommand.
type cli struct {
	logMode string
	log     *logger.Logger
}

func envConfig() bookforge.Config {
	return bookforge.Config{
		APIKey:     os.Getenv("CLAUDE_API_KEY"),
		HordeKey:   os.Getenv("HORDE_API_KEY"),
		MaxRetries: 3,
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "bookforge",
		Short: "Write, store and export books",
		Long: `bookforge drafts books with an LLM, stores them behind a JSON API and
compiles their markdown chapters into DOCX or PDF.

Usage:
  bookforge serve
  bookforge outline "Beekeeping for beginners" --chapters 8
  bookforge draft "Beekeeping for beginners" --author "Ann" --out ./bees
  bookforge export --dir ./bees --format pdf`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(c.logMode)
			if err != nil {
				return err
			}
			c.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				c.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.logMode, "log-mode", os.Getenv("LOG_MODE"), `Log format: "prod" for JSON, anything else for development output`)

	root.AddCommand(
		newServeCmd(c),
		newExportCmd(c),
		newOutlineCmd(c),
		newDraftCmd(c),
		newCoverCmd(c),
	)
	return root
}

// lineProgress prints progress updates one per line.
type lineProgress struct {
	w io.Writer
}

func (p lineProgress) UpdateOutput(message string) {
	fmt.Fprintln(p.w, message)
}
