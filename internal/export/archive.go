package export

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/tessera/internal/trait"
)

// ManifestName is the archive's top-level manifest entry.
const ManifestName = "manifest.json"

// ClassCount summarizes one class in the manifest.
type ClassCount struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Traits int    `json:"traits"`
}

// RarityEntry reports how often one trait was selected across the
// run, in class-then-trait declaration order.
type RarityEntry struct {
	Class string `json:"class"`
	Trait string `json:"trait"`
	Count int    `json:"count"`
}

// Manifest is the archive's top-level summary document.
type Manifest struct {
	Name               string          `json:"name"`
	Description        string          `json:"description,omitempty"`
	Seed               string          `json:"seed"`
	RunID              string          `json:"run_id"`
	Compiler           string          `json:"compiler"`
	Date               string          `json:"date"`
	CollectionSize     int             `json:"collection_size"`
	Editions           int             `json:"editions"`
	Classes            []ClassCount    `json:"classes"`
	Failed             []FailedEdition `json:"failed,omitempty"`
	ViolationsRepaired int             `json:"violations_repaired"`
	UniqueDNA          int             `json:"unique_dna"`
	Rarity             []RarityEntry   `json:"rarity,omitempty"`
}

// ExportCollection generates the whole collection and writes the
// archive (images, metadata, manifest) to w.
//
// The manifest is written last, after every token entry landed, so a
// write failure can never leave a corrupted manifest in an otherwise
// plausible archive: any archive error aborts the export with an
// error and the caller discards the partial output.
func (p *Pipeline) ExportCollection(ctx context.Context, cfg Config, w io.Writer) (*Report, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid export config: %w", err)
	}

	runID := p.runIDs.Generate()
	slog.Info("export starting",
		"run_id", runID,
		"collection", cfg.Name,
		"size", cfg.Size,
		"seed", cfg.MasterSeed,
		"batch_size", cfg.BatchSize,
	)

	records, failed, err := p.generateAll(ctx, cfg)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: runID, Failed: failed}
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec == nil {
			continue
		}
		report.Records = append(report.Records, rec)
		report.ViolationsRepaired += rec.ViolationsRepaired
		seen[rec.DNA] = true
	}
	report.UniqueDNA = len(seen)

	if err := writeArchive(cfg, runID, report, w); err != nil {
		// Archive errors are fatal: partial archives are discarded,
		// never patched.
		return nil, fmt.Errorf("write archive: %w", err)
	}

	// Image bytes are archived; drop them so large collections do
	// not pin every composite in memory through the caller.
	for _, rec := range report.Records {
		rec.Image = nil
	}

	slog.Info("export complete",
		"run_id", runID,
		"editions", len(report.Records),
		"failed", len(report.Failed),
		"unique_dna", report.UniqueDNA,
		"violations_repaired", report.ViolationsRepaired,
	)
	return report, nil
}

// writeArchive streams every token entry and then the manifest.
func writeArchive(cfg Config, runID string, report *Report, w io.Writer) error {
	zw := zip.NewWriter(w)

	for _, rec := range report.Records {
		if err := writeEntry(zw, imageEntryName(rec.Edition), rec.Image); err != nil {
			return err
		}

		meta, err := MarshalMetadata(TokenMetadata(cfg, rec))
		if err != nil {
			return err
		}
		if err := writeEntry(zw, metadataEntryName(rec.Edition), meta); err != nil {
			return err
		}
	}

	manifest := buildManifest(cfg, runID, report)
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeEntry(zw, ManifestName, append(raw, '\n')); err != nil {
		return err
	}

	return zw.Close()
}

// writeEntry adds one file to the archive. Entry timestamps are fixed
// so re-running an export with a fixed date yields an identical
// archive.
func writeEntry(zw *zip.Writer, name string, content []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Unix(0, 0).UTC(),
	})
	if err != nil {
		return fmt.Errorf("create archive entry %s: %w", name, err)
	}
	if _, err := fw.Write(content); err != nil {
		return fmt.Errorf("write archive entry %s: %w", name, err)
	}
	return nil
}

// buildManifest assembles the run summary in declaration order.
func buildManifest(cfg Config, runID string, report *Report) Manifest {
	m := Manifest{
		Name:               cfg.Name,
		Description:        cfg.Description,
		Seed:               cfg.MasterSeed,
		RunID:              runID,
		Compiler:           Compiler,
		Date:               cfg.Date,
		CollectionSize:     cfg.Size,
		Editions:           len(report.Records),
		Failed:             report.Failed,
		ViolationsRepaired: report.ViolationsRepaired,
		UniqueDNA:          report.UniqueDNA,
	}

	for _, class := range cfg.Classes {
		m.Classes = append(m.Classes, ClassCount{
			ID:     class.ID,
			Name:   class.Name,
			Traits: len(class.Traits),
		})
	}

	// Selection counts per (class, trait) in declaration order.
	counts := make(map[string]int)
	for _, rec := range report.Records {
		for classID, t := range rec.Selection {
			counts[classID+"\x00"+t.ID]++
		}
	}
	for _, class := range cfg.Classes {
		for _, t := range class.Traits {
			if n := counts[class.ID+"\x00"+t.ID]; n > 0 {
				m.Rarity = append(m.Rarity, RarityEntry{
					Class: class.Name,
					Trait: t.Name,
					Count: n,
				})
			}
		}
	}
	return m
}

// DNATable computes per-edition DNA without rendering: selection and
// constraint repair only. Used for fast uniqueness audits.
func (p *Pipeline) DNATable(cfg Config) ([]trait.GenerationRecord, error) {
	cfg = cfg.withDefaults()
	// Rendering is skipped, so dimensions are not required here.
	if cfg.Size < 1 {
		return nil, fmt.Errorf("collection size must be >= 1, got %d", cfg.Size)
	}
	if cfg.MasterSeed == "" {
		return nil, fmt.Errorf("master seed must not be empty")
	}

	out := make([]trait.GenerationRecord, 0, cfg.Size)
	for edition := 1; edition <= cfg.Size; edition++ {
		seed := TokenSeed(cfg.MasterSeed, edition)
		sel := selectAndRepair(cfg, seed)
		out = append(out, trait.GenerationRecord{
			Edition:    edition,
			Seed:       seed,
			Selection:  sel.selection,
			Attributes: trait.Attributes(cfg.Classes, sel.selection),
			DNA:        trait.DNA(cfg.Classes, sel.selection),

			ViolationsRepaired: sel.repaired,
		})
	}
	return out, nil
}
