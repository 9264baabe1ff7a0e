package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/tessera/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run conformance scenarios against the generation pipeline.

Each YAML file in the directory describes a project plus assertions
about the tokens it deterministically produces.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, malformed scenarios)

Examples:
  tessera test ./scenarios
  tessera test ./scenarios --filter "repair-*"
  tessera test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	files, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	if len(files) == 0 {
		if opts.Format == "json" {
			return formatter.JSON(TestResult{Scenarios: []ScenarioResult{}})
		}
		formatter.Textf("No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		sr := runScenario(file, formatter)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := formatter.JSON(result); err != nil {
			return err
		}
	} else {
		for _, sr := range result.Scenarios {
			status := "PASS"
			if !sr.Pass {
				status = "FAIL"
			}
			formatter.Textf("%s  %s", status, sr.Name)
			for _, e := range sr.Errors {
				formatter.Textf("      %s", e)
			}
		}
		formatter.Textf("%d passed, %d failed, %d total", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

func runScenario(path string, formatter *OutputFormatter) ScenarioResult {
	formatter.VerboseLog("running scenario %s", path)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(path),
			Errors: []string{err.Error()},
		}
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{err.Error()},
		}
	}
	return ScenarioResult{
		Name:   scenario.Name,
		Pass:   result.Pass,
		Errors: result.Errors,
	}
}

// findScenarioFiles lists YAML files in dir, optionally filtered by a
// glob pattern against the base name. The walk is recursive so
// scenario suites can be grouped in subdirectories.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, info.Name())
			if err != nil {
				return fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}
