package project

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE string

// ValidationError describes one schema or consistency problem in a
// project file.
type ValidationError struct {
	// Field is a dotted path locating the problem where known.
	Field string `json:"field,omitempty"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Validate checks a loaded project against the embedded CUE schema,
// then applies semantic checks the schema cannot express (duplicate
// identifiers). An empty result means the project is usable.
func Validate(p *Project) []ValidationError {
	var out []ValidationError

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing to compile it is a
		// programming error surfaced loudly at the first validation.
		return []ValidationError{{Field: "schema", Message: err.Error()}}
	}

	value := ctx.Encode(p)
	if err := value.Err(); err != nil {
		return []ValidationError{{Message: fmt.Sprintf("encode project: %v", err)}}
	}

	unified := schema.LookupPath(cue.ParsePath("#Project")).Unify(value)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		for _, e := range cueerrors.Errors(err) {
			out = append(out, ValidationError{
				Field:   strings.Join(e.Path(), "."),
				Message: e.Error(),
			})
		}
	}

	out = append(out, checkIdentifiers(p)...)
	return out
}

// checkIdentifiers rejects duplicate class and trait IDs. Duplicate
// trait IDs would make rules and DNA ambiguous.
func checkIdentifiers(p *Project) []ValidationError {
	var out []ValidationError

	classIDs := make(map[string]bool, len(p.Classes))
	traitIDs := make(map[string]bool)
	for _, class := range p.Classes {
		if classIDs[class.ID] {
			out = append(out, ValidationError{
				Field:   "classes",
				Message: fmt.Sprintf("duplicate class id %q", class.ID),
			})
		}
		classIDs[class.ID] = true

		for _, t := range class.Traits {
			if traitIDs[t.ID] {
				out = append(out, ValidationError{
					Field:   "classes." + class.ID,
					Message: fmt.Sprintf("duplicate trait id %q", t.ID),
				})
			}
			traitIDs[t.ID] = true
		}
	}

	ruleIDs := make(map[string]bool, len(p.Rules))
	for _, r := range p.Rules {
		if ruleIDs[r.ID] {
			out = append(out, ValidationError{
				Field:   "rules",
				Message: fmt.Sprintf("duplicate rule id %q", r.ID),
			})
		}
		ruleIDs[r.ID] = true
	}

	return out
}

// Lint reports non-fatal issues: rules referencing trait IDs that no
// class declares. Such rules are vacuously satisfied at generation
// time, which is usually an authoring mistake worth surfacing.
func Lint(p *Project) []string {
	known := make(map[string]bool)
	for _, class := range p.Classes {
		for _, t := range class.Traits {
			known[t.ID] = true
		}
	}

	var warnings []string
	for _, r := range p.Rules {
		if !known[r.Condition] {
			warnings = append(warnings,
				fmt.Sprintf("rule %s references unknown condition trait %q", r.ID, r.Condition))
		}
		if !known[r.Target] {
			warnings = append(warnings,
				fmt.Sprintf("rule %s references unknown target trait %q", r.ID, r.Target))
		}
	}
	return warnings
}
