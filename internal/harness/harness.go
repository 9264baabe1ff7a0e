package harness

import (
	"context"
	"fmt"

	"github.com/roach88/tessera/internal/export"
	"github.com/roach88/tessera/internal/project"
	"github.com/roach88/tessera/internal/render"
	"github.com/roach88/tessera/internal/trait"
)

// fixedDate pins the metadata date so scenario results never depend
// on the wall clock.
const fixedDate = "2024-01-01T00:00:00Z"

// Token is one generated edition as observed by the harness. Image
// bytes are deliberately excluded so snapshots stay reviewable.
type Token struct {
	Edition    int               `json:"edition"`
	Seed       string            `json:"seed"`
	DNA        string            `json:"dna"`
	Selection  map[string]string `json:"selection"`
	Attributes []trait.Attribute `json:"attributes"`
	Repaired   int               `json:"violations_repaired"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass indicates overall success: every edition generated and
	// every assertion held.
	Pass bool `json:"pass"`

	// Tokens holds the generated editions in scenario order.
	Tokens []Token `json:"tokens"`

	// Errors lists assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Tokens: []Token{}, Errors: []string{}}
}

// AddError records an assertion failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a scenario against the real pipeline and returns the
// result. The project file is loaded, validated, and generated with
// the built-in deterministic adapters, so results are reproducible
// across machines and runs.
func Run(scenario *Scenario) (*Result, error) {
	p, err := project.Load(scenario.Project)
	if err != nil {
		return nil, err
	}
	if errs := project.Validate(p); len(errs) > 0 {
		return nil, fmt.Errorf("project %s invalid: %s", scenario.Project, errs[0].Error())
	}

	cfg := export.Config{
		Name:        p.Name,
		Description: p.Description,
		MasterSeed:  p.Seed,
		Size:        p.Size,
		Width:       p.Width,
		Height:      p.Height,
		Classes:     p.ToClasses(),
		Rules:       p.ToRules(),
		Date:        fixedDate,
	}

	editions := scenario.Editions
	if len(editions) == 0 {
		editions = make([]int, p.Size)
		for i := range editions {
			editions[i] = i + 1
		}
	}

	dispatcher := render.NewDispatcher(render.NewCache())
	pipeline := export.NewPipeline(dispatcher, export.NewFixedGenerator("run-"+scenario.Name))

	result := NewResult()
	ctx := context.Background()
	records := make([]*trait.GenerationRecord, 0, len(editions))
	for _, edition := range editions {
		rec, err := pipeline.GenerateToken(ctx, cfg, edition)
		if err != nil {
			return nil, fmt.Errorf("generate edition %d: %w", edition, err)
		}
		records = append(records, rec)
		result.Tokens = append(result.Tokens, snapshotToken(rec))
	}

	for _, errMsg := range EvaluateAssertions(records, cfg, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// snapshotToken flattens a generation record into its observable
// fields. The selection map carries trait IDs only; names and sources
// are covered by the attribute list and the project file.
func snapshotToken(rec *trait.GenerationRecord) Token {
	sel := make(map[string]string, len(rec.Selection))
	for classID, t := range rec.Selection {
		sel[classID] = t.ID
	}
	return Token{
		Edition:    rec.Edition,
		Seed:       rec.Seed,
		DNA:        rec.DNA,
		Selection:  sel,
		Attributes: rec.Attributes,
		Repaired:   rec.ViolationsRepaired,
	}
}
