package trait

// TraitClass is an ordered layer slot holding mutually-exclusive trait
// options (e.g., "Background"). Classes are consumed read-only by the
// pipeline; editing happens upstream in the project file.
//
// INVARIANT: compositing always proceeds in ascending ZIndex. ZIndex
// values need not be contiguous or unique; ties break by declaration
// order, so the order of a project's class list is semantically
// significant and must never be re-sorted in place.
type TraitClass struct {
	// ID uniquely identifies the class within a project.
	ID string `json:"id"`

	// Name is the human-readable class name, emitted as the
	// trait_type of the class's attribute in token metadata.
	Name string `json:"name"`

	// ZIndex orders this class's layer in the composite stack.
	ZIndex int `json:"z_index"`

	// Blend names the blend mode applied when this class's layer is
	// drawn ("normal", "multiply", "screen", ...). Empty means normal.
	Blend string `json:"blend,omitempty"`

	// Opacity scales the layer's alpha multiplicatively in [0, 1].
	// Zero value is treated as fully opaque (unset).
	Opacity float64 `json:"opacity,omitempty"`

	// Traits lists the selectable options in declaration order.
	// Declaration order is the weighted-selection tie-break and must
	// be preserved exactly for reproducibility.
	Traits []Trait `json:"traits"`
}

// TotalWeight returns the sum of the class's trait weights.
// A class with total weight 0 never contributes a selection.
func (c TraitClass) TotalWeight() float64 {
	var total float64
	for _, t := range c.Traits {
		total += t.Weight
	}
	return total
}

// Trait is one selectable visual/audio layer option within a class.
type Trait struct {
	// ID uniquely identifies the trait within a project.
	// Rules reference traits by this ID.
	ID string `json:"id"`

	// Name is the human-readable value emitted in token metadata.
	Name string `json:"name"`

	// Source is the opaque encoded source descriptor, resolved by the
	// source package into a typed variant. The schema of this string
	// belongs to tessera; its content is produced by external editors.
	Source string `json:"source"`

	// Weight is the relative, non-normalized selection weight.
	// Must be non-negative; a zero-weight trait is selectable only
	// when the uniform draw lands exactly on zero remainder.
	Weight float64 `json:"weight"`

	// ClassID names the owning class.
	ClassID string `json:"class_id"`
}

// RuleType categorizes a combinatorial constraint between two traits.
type RuleType string

const (
	// RuleRequire is violated iff the condition trait is present and
	// the target trait is absent.
	RuleRequire RuleType = "require"

	// RuleExclude is violated iff both condition and target are present.
	RuleExclude RuleType = "exclude"

	// RuleMutex is violated iff both traits are present (symmetric
	// form of exclude; kept distinct for authoring clarity).
	RuleMutex RuleType = "mutex"
)

// Rule is a combinatorial constraint between two traits, authored
// externally and consumed read-only by the constraint engine.
//
// A rule referencing a trait that no longer exists is vacuously
// satisfied: absence of either side simply means the predicate over
// the selection's trait-id set cannot fire.
type Rule struct {
	ID        string   `json:"id"`
	Type      RuleType `json:"type"`
	Condition string   `json:"condition"`
	Target    string   `json:"target"`
}

// SelectionResult maps a trait-class ID to the single trait selected
// for it. Classes with no traits or zero total weight are absent.
//
// Ephemeral: produced fresh per token, never persisted independently
// of the token's generation record.
type SelectionResult map[string]Trait

// Attribute is one (trait_type, value) pair in token metadata,
// following the conventional collectible-metadata schema.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// GenerationRecord captures one generated token. Created once by the
// export pipeline, immutable after creation, written to the archive
// and then discarded from memory.
type GenerationRecord struct {
	// Edition is the 1-based token number within the collection.
	Edition int `json:"edition"`

	// Seed is the per-token seed derived from the master seed.
	Seed string `json:"seed"`

	// Selection maps class ID to the selected trait after repair.
	Selection SelectionResult `json:"selection"`

	// Attributes lists (trait_type, value) pairs in class declaration
	// order.
	Attributes []Attribute `json:"attributes"`

	// DNA is the stable content digest of the selection, used for
	// uniqueness auditing.
	DNA string `json:"dna"`

	// ViolationsRepaired counts traits removed by constraint repair.
	ViolationsRepaired int `json:"violations_repaired"`

	// Image holds the encoded composite PNG. Omitted from JSON; the
	// archive stores it as a separate entry.
	Image []byte `json:"-"`
}
