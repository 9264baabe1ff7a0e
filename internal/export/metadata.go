package export

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/tessera/internal/trait"
)

// Metadata is the per-edition JSON document written to the archive at
// metadata/<edition>.json, following the conventional collectible
// schema.
type Metadata struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Edition     int               `json:"edition"`
	Attributes  []trait.Attribute `json:"attributes"`
	DNA         string            `json:"dna"`
	Seed        string            `json:"seed"`
	Compiler    string            `json:"compiler"`
	Date        string            `json:"date"`
}

// TokenMetadata builds the metadata document for one generation
// record. Serialization is struct-driven, so field order is fixed and
// two identical records marshal to identical bytes.
func TokenMetadata(cfg Config, rec *trait.GenerationRecord) Metadata {
	return Metadata{
		Name:        fmt.Sprintf("%s #%d", cfg.Name, rec.Edition),
		Description: cfg.Description,
		Image:       imageEntryName(rec.Edition),
		Edition:     rec.Edition,
		Attributes:  rec.Attributes,
		DNA:         rec.DNA,
		Seed:        rec.Seed,
		Compiler:    Compiler,
		Date:        cfg.Date,
	}
}

// MarshalMetadata encodes a metadata document as indented JSON with a
// trailing newline.
func MarshalMetadata(m Metadata) ([]byte, error) {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode metadata for edition %d: %w", m.Edition, err)
	}
	return append(raw, '\n'), nil
}

func imageEntryName(edition int) string {
	return fmt.Sprintf("images/%d.png", edition)
}

func metadataEntryName(edition int) string {
	return fmt.Sprintf("metadata/%d.json", edition)
}
