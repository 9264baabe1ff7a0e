package rules

import (
	"fmt"
	"log/slog"

	"github.com/roach88/tessera/internal/trait"
)

// MaxFixIterations bounds the auto-fix loop. Cyclic or contradictory
// rule sets terminate here with whatever selection remains.
const MaxFixIterations = 10

// Violation records one rule violated by a selection.
type Violation struct {
	// Rule is the violated rule.
	Rule trait.Rule `json:"rule"`

	// Reason is a human-readable description for diagnostics.
	Reason string `json:"reason"`
}

// Result holds the outcome of validating a selection.
type Result struct {
	Valid bool `json:"valid"`

	// Violations lists violated rules in rule-declaration order.
	Violations []Violation `json:"violations,omitempty"`
}

// Validate checks a selected trait set against the rule list.
//
// Each rule is re-checked against the selection's trait-id set in
// declaration order:
//   - require: violated iff condition present and target absent
//   - exclude: violated iff condition present and target present
//   - mutex:   violated iff both present (symmetric)
//
// A rule whose condition trait is absent cannot fire, so rules
// referencing deleted traits are vacuously satisfied. Unknown rule
// types never fire.
func Validate(selected []trait.Trait, ruleList []trait.Rule) Result {
	present := make(map[string]bool, len(selected))
	for _, t := range selected {
		present[t.ID] = true
	}

	var violations []Violation
	for _, r := range ruleList {
		switch r.Type {
		case trait.RuleRequire:
			if present[r.Condition] && !present[r.Target] {
				violations = append(violations, Violation{
					Rule:   r,
					Reason: fmt.Sprintf("trait %q requires %q", r.Condition, r.Target),
				})
			}

		case trait.RuleExclude:
			if present[r.Condition] && present[r.Target] {
				violations = append(violations, Violation{
					Rule:   r,
					Reason: fmt.Sprintf("trait %q excludes %q", r.Condition, r.Target),
				})
			}

		case trait.RuleMutex:
			if present[r.Condition] && present[r.Target] {
				violations = append(violations, Violation{
					Rule:   r,
					Reason: fmt.Sprintf("traits %q and %q are mutually exclusive", r.Condition, r.Target),
				})
			}

		default:
			// Unknown types are authored upstream; they never fire.
			slog.Warn("unknown rule type ignored", "rule_id", r.ID, "type", string(r.Type))
		}
	}

	return Result{Valid: len(violations) == 0, Violations: violations}
}

// AutoFix repairs a selection by repeatedly removing the first
// violation's target trait and re-validating, up to MaxFixIterations.
//
// This is a heuristic, not a solver: require violations whose target
// is absent cannot be repaired by removal, and cyclic rule sets may
// retain violations at the bound. The returned selection is the
// best-effort result either way.
//
// Determinism: given the same selection and rule list, the same traits
// are removed in the same order. Repaired counts removed traits, not
// loop iterations.
func AutoFix(selected []trait.Trait, ruleList []trait.Rule) (fixed []trait.Trait, repaired int) {
	fixed = make([]trait.Trait, len(selected))
	copy(fixed, selected)

	for i := 0; i < MaxFixIterations; i++ {
		res := Validate(fixed, ruleList)
		if res.Valid {
			return fixed, repaired
		}

		first := res.Violations[0]
		next, removed := removeTrait(fixed, first.Rule.Target)
		if !removed {
			// Target not in the selection (e.g. an unsatisfiable
			// require). Removal makes no progress; stop early with
			// the same result the full bound would produce.
			slog.Debug("auto-fix stalled on unremovable target",
				"rule_id", first.Rule.ID,
				"target", first.Rule.Target,
			)
			return fixed, repaired
		}

		repaired++
		slog.Debug("auto-fix removed trait",
			"rule_id", first.Rule.ID,
			"removed", first.Rule.Target,
			"iteration", i,
		)
		fixed = next
	}

	return fixed, repaired
}

// removeTrait returns selected without the trait carrying id,
// preserving order. The second return reports whether anything was
// removed.
func removeTrait(selected []trait.Trait, id string) ([]trait.Trait, bool) {
	out := make([]trait.Trait, 0, len(selected))
	removed := false
	for _, t := range selected {
		if t.ID == id {
			removed = true
			continue
		}
		out = append(out, t)
	}
	return out, removed
}
