package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/export"
	"github.com/roach88/tessera/internal/trait"
)

// DNAOptions holds flags for the dna command.
type DNAOptions struct {
	*RootOptions
	Seed string
}

// DNAReport is the machine-readable dna command result.
type DNAReport struct {
	Size       int              `json:"size"`
	UniqueDNA  int              `json:"unique_dna"`
	Duplicates map[string][]int `json:"duplicates,omitempty"`
	Tokens     []DNAEntry       `json:"tokens"`
}

// DNAEntry is one edition's DNA audit row.
type DNAEntry struct {
	Edition  int    `json:"edition"`
	Seed     string `json:"seed"`
	DNA      string `json:"dna"`
	Repaired int    `json:"violations_repaired"`
}

// NewDNACommand creates the dna command.
func NewDNACommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DNAOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dna <project.yaml>",
		Short: "Audit collection DNA without rendering",
		Long: `Compute every edition's selection and DNA without rendering images.

Selection and repair are cheap relative to rendering, so this audits
uniqueness for large collections in seconds. Duplicate DNA values are
listed with the editions that share them.

Exit codes:
  0 - all DNA values are unique
  1 - duplicate DNA found
  2 - command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDNA(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Seed, "seed", "", "override the project's master seed")

	return cmd
}

func runDNA(opts *DNAOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	cfg, err := loadConfig(path, opts.Seed)
	if err != nil {
		return err
	}

	pipeline := export.NewPipeline(nil, nil)
	records, err := pipeline.DNATable(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "dna audit failed", err)
	}

	report := buildDNAReport(cfg, records)

	if opts.Format == "json" {
		if err := formatter.JSON(report); err != nil {
			return err
		}
	} else {
		for _, entry := range report.Tokens {
			formatter.Textf("%d\t%s\t%s", entry.Edition, entry.Seed, entry.DNA)
		}
		formatter.Textf("%d editions, %d unique DNA", report.Size, report.UniqueDNA)
		for dna, editions := range report.Duplicates {
			formatter.Textf("duplicate %s: editions %v", dna, editions)
		}
	}

	if len(report.Duplicates) > 0 {
		return NewExitError(ExitFailure, "duplicate DNA found")
	}
	return nil
}

func buildDNAReport(cfg export.Config, records []trait.GenerationRecord) DNAReport {
	report := DNAReport{
		Size:   cfg.Size,
		Tokens: make([]DNAEntry, 0, len(records)),
	}

	byDNA := make(map[string][]int)
	for _, rec := range records {
		report.Tokens = append(report.Tokens, DNAEntry{
			Edition:  rec.Edition,
			Seed:     rec.Seed,
			DNA:      rec.DNA,
			Repaired: rec.ViolationsRepaired,
		})
		byDNA[rec.DNA] = append(byDNA[rec.DNA], rec.Edition)
	}

	report.UniqueDNA = len(byDNA)
	for dna, editions := range byDNA {
		if len(editions) > 1 {
			if report.Duplicates == nil {
				report.Duplicates = make(map[string][]int)
			}
			report.Duplicates[dna] = editions
		}
	}
	return report
}
