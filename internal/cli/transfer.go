package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/app"
	"github.com/MrSnakeDoc/shelf/internal/sources"
	"github.com/MrSnakeDoc/shelf/internal/store/jsonfile"
)

const closeTimeout = 10 * time.Second

// ExportOptions holds the export flags.
type ExportOptions struct {
	Output string
}

func NewExportCommand(open Opener) *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every bookmark and the settings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), open, func(ctx context.Context, a *app.App) error {
				payload, err := a.Service().Export(ctx)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(payload, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode export: %w", err)
				}
				data = append(data, '\n')

				if opts.Output == "" || opts.Output == "-" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.MkdirAll(filepath.Dir(opts.Output), 0o750); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				if err := jsonfile.WriteFileAtomic(opts.Output, data); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d bookmarks to %s\n", len(payload.Bookmarks), opts.Output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// ImportOptions holds the import flags.
type ImportOptions struct {
	Overwrite bool
	Format    string
}

func NewImportCommand(open Opener) *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import bookmarks from an export document or a Homepage YAML file",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.Format != "" && !slices.Contains(sources.Formats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %s", opts.Format, strings.Join(sources.Formats, ", "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := sources.Load(args[0], opts.Format)
			if err != nil {
				return err
			}
			payload.Overwrite = opts.Overwrite

			return withApp(cmd.Context(), open, func(ctx context.Context, a *app.App) error {
				result, err := a.Service().Import(ctx, payload)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "imported %d bookmarks, rejected %d\n", result.Imported, len(result.Errors))
				for _, msg := range result.Errors {
					fmt.Fprintf(out, "  %s\n", msg)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "replace the current collection")
	cmd.Flags().StringVar(&opts.Format, "format", "",
		"input format ("+strings.Join(sources.Formats, "|")+"), detected from the extension when empty")
	return cmd
}

// withApp opens the app, runs fn and closes the app, draining backups.
func withApp(ctx context.Context, open Opener, fn func(context.Context, *app.App) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := open()
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)

	closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := a.Close(closeCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
