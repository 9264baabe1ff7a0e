package harness

import (
	"fmt"

	"github.com/roach88/tessera/internal/export"
	"github.com/roach88/tessera/internal/rules"
	"github.com/roach88/tessera/internal/trait"
)

// EvaluateAssertions checks every assertion against the generated
// records and returns one message per failure. Assertions are
// evaluated in declaration order and all failures are reported, not
// just the first.
func EvaluateAssertions(records []*trait.GenerationRecord, cfg export.Config, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if msg := evaluateAssertion(records, cfg, &a); msg != "" {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %s", i, a.Type, msg))
		}
	}
	return errs
}

func evaluateAssertion(records []*trait.GenerationRecord, cfg export.Config, a *Assertion) string {
	switch a.Type {
	case AssertSelection:
		rec := findEdition(records, a.Edition)
		if rec == nil {
			return fmt.Sprintf("edition %d was not generated", a.Edition)
		}
		t, ok := rec.Selection[a.Class]
		if !ok {
			return fmt.Sprintf("edition %d has no selection for class %q", a.Edition, a.Class)
		}
		if t.ID != a.Trait {
			return fmt.Sprintf("edition %d selected %q for class %q, want %q", a.Edition, t.ID, a.Class, a.Trait)
		}

	case AssertClassAbsent:
		rec := findEdition(records, a.Edition)
		if rec == nil {
			return fmt.Sprintf("edition %d was not generated", a.Edition)
		}
		if t, ok := rec.Selection[a.Class]; ok {
			return fmt.Sprintf("edition %d unexpectedly selected %q for class %q", a.Edition, t.ID, a.Class)
		}

	case AssertAttribute:
		rec := findEdition(records, a.Edition)
		if rec == nil {
			return fmt.Sprintf("edition %d was not generated", a.Edition)
		}
		for _, attr := range rec.Attributes {
			if attr.TraitType == a.TraitType && attr.Value == a.Value {
				return ""
			}
		}
		return fmt.Sprintf("edition %d attributes do not contain (%q, %q)", a.Edition, a.TraitType, a.Value)

	case AssertRepaired:
		rec := findEdition(records, a.Edition)
		if rec == nil {
			return fmt.Sprintf("edition %d was not generated", a.Edition)
		}
		if rec.ViolationsRepaired != a.Count {
			return fmt.Sprintf("edition %d repaired %d violations, want %d", a.Edition, rec.ViolationsRepaired, a.Count)
		}

	case AssertDNAUnique:
		seen := make(map[string]int, len(records))
		for _, rec := range records {
			if prev, ok := seen[rec.DNA]; ok {
				return fmt.Sprintf("editions %d and %d share DNA %s", prev, rec.Edition, rec.DNA)
			}
			seen[rec.DNA] = rec.Edition
		}

	case AssertRulesHold:
		for _, rec := range records {
			res := rules.Validate(trait.Selected(cfg.Classes, rec.Selection), cfg.Rules)
			if !res.Valid {
				return fmt.Sprintf("edition %d violates rule %s: %s",
					rec.Edition, res.Violations[0].Rule.ID, res.Violations[0].Reason)
			}
		}
	}
	return ""
}

func findEdition(records []*trait.GenerationRecord, edition int) *trait.GenerationRecord {
	for _, rec := range records {
		if rec.Edition == edition {
			return rec
		}
	}
	return nil
}
