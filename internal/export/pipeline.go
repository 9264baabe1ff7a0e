package export

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/tessera/internal/compose"
	"github.com/roach88/tessera/internal/render"
	"github.com/roach88/tessera/internal/rules"
	"github.com/roach88/tessera/internal/selector"
	"github.com/roach88/tessera/internal/trait"
)

// DefaultBatchSize bounds peak concurrent token generations. Renders
// are CPU-bound per token; unbounded parallelism risks exhausting
// decode and render resources.
const DefaultBatchSize = 8

// Config describes one export run. Classes and Rules are consumed
// read-only in declaration order.
type Config struct {
	// Name is the collection name ("<Name> #<edition>" per token).
	Name string

	// Description is copied into every token's metadata.
	Description string

	// MasterSeed seeds the whole collection. Token seeds derive from
	// it as "<MasterSeed>-<edition>".
	MasterSeed string

	// Size is the collection size (editions 1..Size).
	Size int

	// Width and Height are the composite dimensions in pixels.
	Width, Height int

	// Classes lists trait classes in declaration order.
	Classes []trait.TraitClass

	// Rules lists constraints in declaration order.
	Rules []trait.Rule

	// BatchSize overrides DefaultBatchSize when positive.
	BatchSize int

	// Date is stamped into metadata. Empty means the current UTC
	// date; fix it for reproducible archives.
	Date string

	// Progress, when set, receives (completed, total) after every
	// finished batch. Completed counts both succeeded and failed
	// editions.
	Progress func(done, total int)
}

// withDefaults returns cfg with unset optional fields resolved.
func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Date == "" {
		c.Date = time.Now().UTC().Format(time.RFC3339)
	}
	return c
}

// validate rejects configs the pipeline cannot honor.
func (c Config) validate() error {
	if c.Size < 1 {
		return fmt.Errorf("collection size must be >= 1, got %d", c.Size)
	}
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("composite dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.MasterSeed == "" {
		return fmt.Errorf("master seed must not be empty")
	}
	for _, class := range c.Classes {
		if _, err := compose.ParseBlendMode(class.Blend); err != nil {
			return fmt.Errorf("class %s: %w", class.ID, err)
		}
	}
	return nil
}

// TokenSeed derives a per-edition seed from the master seed. The
// encoding (concatenation with a dash) is deliberately simple and
// must stay stable: existing collections are only reproducible while
// this function is.
func TokenSeed(masterSeed string, edition int) string {
	return fmt.Sprintf("%s-%d", masterSeed, edition)
}

// FailedEdition reports one edition that could not be generated.
type FailedEdition struct {
	Edition int    `json:"edition"`
	Reason  string `json:"reason"`
}

// Pipeline drives token generation against a render dispatcher. The
// dispatcher (and its caches) is injected so tests control every
// collaborator.
type Pipeline struct {
	dispatcher *render.Dispatcher
	runIDs     RunIDGenerator
}

// NewPipeline creates a Pipeline. A nil runIDs defaults to UUIDv7.
func NewPipeline(dispatcher *render.Dispatcher, runIDs RunIDGenerator) *Pipeline {
	if runIDs == nil {
		runIDs = UUIDv7Generator{}
	}
	return &Pipeline{dispatcher: dispatcher, runIDs: runIDs}
}

// GenerateToken produces one edition: seeded selection, constraint
// repair, concurrent per-class renders, composite, and metadata. Pure
// with respect to (cfg, edition) modulo adapter non-determinism, so
// editions may be generated in any order or concurrently.
func (p *Pipeline) GenerateToken(ctx context.Context, cfg Config, edition int) (*trait.GenerationRecord, error) {
	seed := TokenSeed(cfg.MasterSeed, edition)
	repaired := selectAndRepair(cfg, seed)
	fixedSel := repaired.selection

	layers, err := p.renderLayers(ctx, cfg, fixedSel, seed)
	if err != nil {
		return nil, err
	}

	composite := compose.Compose(cfg.Width, cfg.Height, layers)
	var buf bytes.Buffer
	if err := png.Encode(&buf, composite); err != nil {
		return nil, fmt.Errorf("encode composite for edition %d: %w", edition, err)
	}

	rec := &trait.GenerationRecord{
		Edition:            edition,
		Seed:               seed,
		Selection:          fixedSel,
		Attributes:         trait.Attributes(cfg.Classes, fixedSel),
		DNA:                trait.DNA(cfg.Classes, fixedSel),
		ViolationsRepaired: repaired.repaired,
		Image:              buf.Bytes(),
	}

	slog.Debug("token generated",
		"edition", edition,
		"seed", seed,
		"dna", rec.DNA,
		"violations_repaired", rec.ViolationsRepaired,
	)
	return rec, nil
}

// repairedSelection is a selection after constraint repair.
type repairedSelection struct {
	selection trait.SelectionResult
	repaired  int
}

// selectAndRepair runs seeded selection and bounded constraint repair
// for one token seed. Removed traits leave their class absent from
// the result, exactly like a zero-weight class.
func selectAndRepair(cfg Config, seed string) repairedSelection {
	sel := selector.SelectWeighted(seed, cfg.Classes)
	fixed, repaired := rules.AutoFix(trait.Selected(cfg.Classes, sel), cfg.Rules)

	fixedSel := make(trait.SelectionResult, len(fixed))
	for _, t := range fixed {
		fixedSel[t.ClassID] = t
	}
	return repairedSelection{selection: fixedSel, repaired: repaired}
}

// renderLayers renders every selected class's trait concurrently.
// Renders for different classes are independent pure functions of
// (trait, size, seed); the errgroup join is the token's only barrier
// before compositing.
func (p *Pipeline) renderLayers(ctx context.Context, cfg Config, sel trait.SelectionResult, seed string) ([]compose.Layer, error) {
	layers := make([]compose.Layer, len(cfg.Classes))
	g, gctx := errgroup.WithContext(ctx)

	for i, class := range cfg.Classes {
		t, ok := sel[class.ID]
		if !ok {
			// No selection for this class: the only silent skip.
			continue
		}

		mode, err := compose.ParseBlendMode(class.Blend)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", class.ID, err)
		}

		i, class, t := i, class, t
		g.Go(func() error {
			surface, err := p.dispatcher.RenderTrait(gctx, t, cfg.Width, cfg.Height, seed)
			if err != nil {
				return err
			}
			layers[i] = compose.Layer{
				Surface: surface,
				Mode:    mode,
				Opacity: class.Opacity,
				ZIndex:  class.ZIndex,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Compact: unselected classes left nil slots.
	out := layers[:0]
	for _, layer := range layers {
		if layer.Surface != nil {
			out = append(out, layer)
		}
	}
	return out, nil
}

// Report summarizes one export run.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string

	// Records holds successful tokens ordered by edition. Image bytes
	// are retained only until archived.
	Records []*trait.GenerationRecord

	// Failed lists editions that could not be generated, ordered by
	// edition.
	Failed []FailedEdition

	// ViolationsRepaired sums repaired counts across all tokens.
	ViolationsRepaired int

	// UniqueDNA counts distinct DNA strings among successful tokens.
	UniqueDNA int
}

// generateAll runs all editions in fixed-size batches. Within a batch
// editions generate concurrently; batches are awaited in order so
// peak concurrency stays bounded. Batch boundaries cannot affect
// per-token results - tokens are pure functions of (cfg, edition).
func (p *Pipeline) generateAll(ctx context.Context, cfg Config) ([]*trait.GenerationRecord, []FailedEdition, error) {
	records := make([]*trait.GenerationRecord, cfg.Size)
	reasons := make([]string, cfg.Size)

	done := 0
	for start := 1; start <= cfg.Size; start += cfg.BatchSize {
		end := start + cfg.BatchSize - 1
		if end > cfg.Size {
			end = cfg.Size
		}

		g, gctx := errgroup.WithContext(ctx)
		for edition := start; edition <= end; edition++ {
			edition := edition
			g.Go(func() error {
				rec, err := p.GenerateToken(gctx, cfg, edition)
				if err != nil {
					// A failed edition is a reported outcome, not a
					// run failure. Only context cancellation aborts.
					reasons[edition-1] = err.Error()
					slog.Error("edition failed",
						"edition", edition,
						"error", err,
					)
					return ctx.Err()
				}
				records[edition-1] = rec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, nil, err
		}

		done += end - start + 1
		if cfg.Progress != nil {
			cfg.Progress(done, cfg.Size)
		}
	}

	var failed []FailedEdition
	for i, reason := range reasons {
		if reason != "" {
			failed = append(failed, FailedEdition{Edition: i + 1, Reason: reason})
		}
	}
	return records, failed, nil
}
