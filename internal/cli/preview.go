package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/export"
	"github.com/roach88/tessera/internal/render"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	Output    string
	Seed      string
	ImageRoot string
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview <project.yaml> <edition>",
		Short: "Generate a single edition",
		Long: `Generate one edition of the collection without exporting an archive.

The token is identical to what a full export would produce for the
same edition. Metadata goes to stdout; the composite image is written
only when --output is set.

Examples:
  tessera preview project.yaml 7
  tessera preview project.yaml 7 -o token7.png --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			edition, err := strconv.Atoi(args[1])
			if err != nil || edition < 1 {
				return NewExitError(ExitCommandError, "edition must be a positive integer")
			}
			return runPreview(opts, args[0], edition, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the composite PNG to this path")
	cmd.Flags().StringVar(&opts.Seed, "seed", "", "override the project's master seed")
	cmd.Flags().StringVar(&opts.ImageRoot, "images", "", "root directory for file-based image sources")

	return cmd
}

func runPreview(opts *PreviewOptions, path string, edition int, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadConfig(path, opts.Seed)
	if err != nil {
		return err
	}
	if edition > cfg.Size {
		return NewExitError(ExitCommandError, "edition exceeds collection size")
	}

	dispatcherOpts := []render.Option{}
	if opts.ImageRoot != "" {
		dispatcherOpts = append(dispatcherOpts, render.WithImageRoot(opts.ImageRoot))
	}
	dispatcher := render.NewDispatcher(render.NewCache(), dispatcherOpts...)
	pipeline := export.NewPipeline(dispatcher, nil)

	rec, err := pipeline.GenerateToken(cmd.Context(), cfg, edition)
	if err != nil {
		return WrapExitError(ExitFailure, "preview failed", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, rec.Image, 0o644); err != nil {
			return WrapExitError(ExitCommandError, "failed to write image", err)
		}
		formatter.VerboseLog("wrote %d bytes to %s", len(rec.Image), opts.Output)
	}

	if opts.Format == "json" {
		return formatter.JSON(rec)
	}
	formatter.Textf("edition %d (seed %s)", rec.Edition, rec.Seed)
	formatter.Textf("dna: %s", rec.DNA)
	for _, attr := range rec.Attributes {
		formatter.Textf("  %s: %s", attr.TraitType, attr.Value)
	}
	if rec.ViolationsRepaired > 0 {
		formatter.Textf("violations repaired: %d", rec.ViolationsRepaired)
	}
	return nil
}
