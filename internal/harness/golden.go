package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures a scenario run for golden comparison. JSON map
// keys serialize sorted, so the encoding is deterministic.
type Snapshot struct {
	ScenarioName string  `json:"scenario_name"`
	Tokens       []Token `json:"tokens"`
}

// RunWithGolden executes a scenario and compares the token snapshot
// against testdata/golden/{scenario.Name}.golden. Regenerate golden
// files with:
//
//	go test ./internal/harness -update
//
// Assertion failures inside the scenario are returned as an error;
// snapshot drift fails the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed: %v", scenario.Name, result.Errors)
	}

	snapshot := Snapshot{
		ScenarioName: scenario.Name,
		Tokens:       result.Tokens,
	}
	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, raw)
	return nil
}
