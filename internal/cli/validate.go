package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/project"
)

// ValidationResult holds validation output for one project file.
type ValidationResult struct {
	Valid    bool                      `json:"valid"`
	Errors   []project.ValidationError `json:"errors,omitempty"`
	Warnings []string                  `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <project.yaml>",
		Short: "Validate a project file",
		Long: `Validate a project file against the schema and consistency checks.

Schema violations (bad blend modes, negative weights, missing fields)
and duplicate identifiers are errors. Rules referencing traits that no
class declares are warnings; such rules can never fire.

Exit codes:
  0 - project is valid
  1 - validation errors found
  2 - command error (file missing, YAML syntax)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	p, err := project.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load project", err)
	}
	formatter.VerboseLog("loaded project %q with %d classes and %d rules",
		p.Name, len(p.Classes), len(p.Rules))

	result := ValidationResult{
		Errors:   project.Validate(p),
		Warnings: project.Lint(p),
	}
	result.Valid = len(result.Errors) == 0

	if opts.Format == "json" {
		if err := formatter.JSON(result); err != nil {
			return err
		}
	} else {
		for _, e := range result.Errors {
			formatter.Textf("error: %s", e.Error())
		}
		for _, w := range result.Warnings {
			formatter.Textf("warning: %s", w)
		}
		if result.Valid {
			formatter.Textf("%s: valid (%d warnings)", path, len(result.Warnings))
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "project validation failed")
	}
	return nil
}
