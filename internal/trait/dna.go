package trait

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// dnaDomain prefixes the DNA preimage for content-addressed identity.
// Version suffix enables future encoding migration.
const dnaDomain = "tessera/dna/v1"

// DNA computes the stable content digest of a selection: for each
// class in declaration order that has a selection, the NFC-normalized
// segment "classID:traitID" is appended; segments are joined with "|",
// domain-prefixed, and hashed with SHA-256.
//
// Classes absent from the selection are omitted entirely (not encoded
// as empty segments), so adding a zero-weight class to a project never
// perturbs existing DNA values.
//
// CRITICAL: the preimage depends only on class declaration order and
// selected trait IDs. Anything else (names, weights, sources) may be
// edited without changing DNA.
func DNA(classes []TraitClass, sel SelectionResult) string {
	segments := make([]string, 0, len(classes))
	for _, class := range classes {
		t, ok := sel[class.ID]
		if !ok {
			continue
		}
		segments = append(segments, norm.NFC.String(class.ID+":"+t.ID))
	}

	preimage := dnaDomain + "\x00" + strings.Join(segments, "|")
	sum := sha256.Sum256([]byte(preimage))
	return hex.EncodeToString(sum[:])
}

// Attributes flattens a selection into (trait_type, value) pairs in
// class declaration order. Classes without a selection are skipped.
func Attributes(classes []TraitClass, sel SelectionResult) []Attribute {
	attrs := make([]Attribute, 0, len(classes))
	for _, class := range classes {
		t, ok := sel[class.ID]
		if !ok {
			continue
		}
		attrs = append(attrs, Attribute{TraitType: class.Name, Value: t.Name})
	}
	return attrs
}

// Selected flattens a selection into a trait slice in class
// declaration order. The constraint engine consumes this form.
func Selected(classes []TraitClass, sel SelectionResult) []Trait {
	out := make([]Trait, 0, len(classes))
	for _, class := range classes {
		if t, ok := sel[class.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}
