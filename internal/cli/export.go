package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/export"
	"github.com/roach88/tessera/internal/project"
	"github.com/roach88/tessera/internal/render"
	"github.com/roach88/tessera/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output    string
	Seed      string
	BatchSize int
	Date      string
	ImageRoot string
	JobsDB    string
}

// ExportSummary is the machine-readable export result.
type ExportSummary struct {
	RunID              string                 `json:"run_id"`
	Archive            string                 `json:"archive"`
	Editions           int                    `json:"editions"`
	Failed             []export.FailedEdition `json:"failed,omitempty"`
	UniqueDNA          int                    `json:"unique_dna"`
	ViolationsRepaired int                    `json:"violations_repaired"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <project.yaml>",
		Short: "Generate the collection and write a zip archive",
		Long: `Generate every edition of the collection and write a zip archive
containing images, per-token metadata, and a run manifest.

The same project file and master seed always produce the same tokens.
Failed editions are reported in the manifest without aborting the run.

Examples:
  tessera export project.yaml -o collection.zip
  tessera export project.yaml -o out.zip --seed override-seed --batch-size 4
  tessera export project.yaml -o out.zip --images ./assets --jobs-db jobs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "archive output path (required)")
	cmd.Flags().StringVar(&opts.Seed, "seed", "", "override the project's master seed")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 0, "editions generated concurrently (default 8)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "metadata date, RFC 3339 (default: now)")
	cmd.Flags().StringVar(&opts.ImageRoot, "images", "", "root directory for file-based image sources")
	cmd.Flags().StringVar(&opts.JobsDB, "jobs-db", "", "SQLite cache for remote render jobs")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(opts *ExportOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadConfig(path, opts.Seed)
	if err != nil {
		return err
	}
	cfg.BatchSize = opts.BatchSize
	cfg.Date = opts.Date

	dispatcherOpts := []render.Option{}
	if opts.ImageRoot != "" {
		dispatcherOpts = append(dispatcherOpts, render.WithImageRoot(opts.ImageRoot))
	}
	if opts.JobsDB != "" {
		jobs, err := store.Open(opts.JobsDB)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open jobs cache", err)
		}
		defer jobs.Close()
		dispatcherOpts = append(dispatcherOpts, render.WithJobCache(jobs))
	}

	out, err := os.Create(opts.Output)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create archive", err)
	}

	dispatcher := render.NewDispatcher(render.NewCache(), dispatcherOpts...)
	pipeline := export.NewPipeline(dispatcher, nil)

	if opts.Format == "text" {
		cfg.Progress = func(done, total int) {
			formatter.Textf("generated %d/%d", done, total)
		}
	}

	report, err := pipeline.ExportCollection(cmd.Context(), cfg, out)
	if err != nil {
		out.Close()
		os.Remove(opts.Output)
		return WrapExitError(ExitFailure, "export failed", err)
	}
	if err := out.Close(); err != nil {
		return WrapExitError(ExitCommandError, "failed to finalize archive", err)
	}

	summary := ExportSummary{
		RunID:              report.RunID,
		Archive:            opts.Output,
		Editions:           len(report.Records),
		Failed:             report.Failed,
		UniqueDNA:          report.UniqueDNA,
		ViolationsRepaired: report.ViolationsRepaired,
	}

	if opts.Format == "json" {
		return formatter.JSON(summary)
	}
	formatter.Textf("exported %d editions to %s (run %s)", summary.Editions, summary.Archive, summary.RunID)
	formatter.Textf("unique DNA: %d, violations repaired: %d, failed: %d",
		summary.UniqueDNA, summary.ViolationsRepaired, len(summary.Failed))
	for _, f := range summary.Failed {
		formatter.Textf("  edition %d failed: %s", f.Edition, f.Reason)
	}
	return nil
}

// loadConfig loads and validates a project file into an export
// config. seedOverride replaces the project's master seed when set.
func loadConfig(path, seedOverride string) (export.Config, error) {
	p, err := project.Load(path)
	if err != nil {
		return export.Config{}, WrapExitError(ExitCommandError, "failed to load project", err)
	}
	if errs := project.Validate(p); len(errs) > 0 {
		return export.Config{}, WrapExitError(ExitFailure,
			fmt.Sprintf("project invalid: %s", errs[0].Error()), nil)
	}

	seed := p.Seed
	if seedOverride != "" {
		seed = seedOverride
	}
	return export.Config{
		Name:        p.Name,
		Description: p.Description,
		MasterSeed:  seed,
		Size:        p.Size,
		Width:       p.Width,
		Height:      p.Height,
		Classes:     p.ToClasses(),
		Rules:       p.ToRules(),
	}, nil
}
