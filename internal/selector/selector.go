package selector

import (
	"log/slog"

	"github.com/roach88/tessera/internal/trait"
)

// SelectWeighted selects exactly one trait per selectable class using
// a single deterministic stream derived from seed.
//
// For each class in declaration order: draw one uniform value in
// [0, totalWeight), then walk the class's traits in declaration order
// subtracting each trait's weight; the first trait where the running
// remainder is <= 0 is selected. This is a cumulative-weight linear
// scan - the declaration-order tie-break is part of the contract and
// must be preserved exactly for reproducibility.
//
// Classes with no traits or zero total weight are skipped without
// error and without consuming a draw, so they are absent from the
// result and never perturb other classes' outcomes.
func SelectWeighted(seed string, classes []trait.TraitClass) trait.SelectionResult {
	stream := NewStream(seed)
	sel := make(trait.SelectionResult, len(classes))

	for _, class := range classes {
		total := class.TotalWeight()
		if len(class.Traits) == 0 || total <= 0 {
			slog.Debug("class skipped by selection",
				"class", class.ID,
				"traits", len(class.Traits),
				"total_weight", total,
			)
			continue
		}

		remainder := stream.Float64() * total
		for _, t := range class.Traits {
			remainder -= t.Weight
			if remainder <= 0 {
				sel[class.ID] = t
				break
			}
		}
		if _, ok := sel[class.ID]; !ok {
			// Rounding can leave a hair of remainder after the last
			// weight; the draw belongs to the final positive bucket.
			for i := len(class.Traits) - 1; i >= 0; i-- {
				if class.Traits[i].Weight > 0 {
					sel[class.ID] = class.Traits[i]
					break
				}
			}
		}
	}

	return sel
}
