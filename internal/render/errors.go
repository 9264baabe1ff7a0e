package render

import (
	"errors"
	"fmt"
)

// ErrUnknownPreset indicates a preset ID with no registered
// implementation in the target adapter.
var ErrUnknownPreset = errors.New("unknown preset")

// ErrNoAIClient indicates an sd trait was dispatched with no remote
// client configured.
var ErrNoAIClient = errors.New("no AI image client configured")

// Error surfaces an adapter failure for a single trait. The export
// pipeline aborts that token's generation and reports a failed
// edition rather than silently omitting the layer.
type Error struct {
	// TraitID identifies the trait whose render failed.
	TraitID string

	// Kind is the resolved source modality.
	Kind string

	// PresetID is the canonical preset, when the modality has one.
	PresetID string

	// Err is the underlying adapter error.
	Err error
}

func (e *Error) Error() string {
	if e.PresetID != "" {
		return fmt.Sprintf("render trait %s (%s/%s): %v", e.TraitID, e.Kind, e.PresetID, e.Err)
	}
	return fmt.Sprintf("render trait %s (%s): %v", e.TraitID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnknownPreset reports whether err wraps ErrUnknownPreset.
func IsUnknownPreset(err error) bool {
	return errors.Is(err, ErrUnknownPreset)
}
