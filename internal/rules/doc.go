// Package rules implements constraint validation and bounded repair
// over a token's selected trait set.
//
// Rules are evaluated in declaration order, always. Repair removes the
// first violation's target trait, re-validates, and repeats up to a
// fixed iteration bound, so the same (selection, rules) pair always
// removes the same traits in the same order. Pathological rule sets
// (cycles, contradictions) terminate at the bound with a best-effort
// result; an unsatisfied residue is reported, not raised as an error.
package rules
