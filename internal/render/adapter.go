package render

import (
	"context"
	"image"
	"image/color"

	"github.com/roach88/tessera/internal/selector"
)

// Adapter renders one procedural modality. All adapters share the
// same contract: a pure function of (presetID, params, width, height,
// seed) returning a surface of exactly the requested size.
//
// The built-in implementations stand in for the external shader,
// sketch, and audio-pattern engines; production deployments may swap
// richer ones in through the dispatcher options.
type Adapter interface {
	Render(ctx context.Context, presetID string, params map[string]any, width, height int, seed string) (*image.RGBA, error)
}

// adapterStream derives the deterministic draw stream for one adapter
// invocation. The preset participates in the derivation so two
// presets rendered under the same seed do not mirror each other.
func adapterStream(modality, presetID, seed string) *selector.Stream {
	return selector.NewStream(modality + "\x00" + presetID + "\x00" + seed)
}

// seededPalette returns the explicit "colors" parameter when present,
// otherwise n colors drawn from the stream.
func seededPalette(stream *selector.Stream, params map[string]any, n int) []color.RGBA {
	if colors := paramColors(params); len(colors) > 0 {
		return colors
	}
	out := make([]color.RGBA, n)
	for i := range out {
		out[i] = color.RGBA{
			R: uint8(stream.IntN(256)),
			G: uint8(stream.IntN(256)),
			B: uint8(stream.IntN(256)),
			A: 255,
		}
	}
	return out
}
