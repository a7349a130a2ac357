// Package cli defines the shelf command line: serve, export and import.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/app"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

// Opener builds the application from the environment.
type Opener func() (*app.App, error)

// DefaultOpener loads the configuration and the logger, then opens the app.
func DefaultOpener() (*app.App, error) {
	cfg := config.Load()
	log := logger.NewWithFile(cfg.LogLevel, cfg.PrettyLog, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	return app.New(cfg, log)
}

// NewRootCommand creates the root command. Without a subcommand it serves.
func NewRootCommand(open Opener) *cobra.Command {
	serve := NewServeCommand(open)

	cmd := &cobra.Command{
		Use:           "shelf",
		Short:         "Shelf - a self-hosted bookmark manager",
		Long:          "Shelf keeps an ordered, categorized bookmark collection behind a small JSON API.",
		Version:       version.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(NewExportCommand(open))
	cmd.AddCommand(NewImportCommand(open))

	return cmd
}
