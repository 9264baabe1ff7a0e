package render

import (
	"context"
	"fmt"
	"image"
	"math"
)

// PatternAdapter is the built-in stand-in for the external
// audio-pattern visualization engine: it draws the shape of a step
// sequence or waveform rather than synthesizing audio.
// Presets: bars, wave, pulse.
type PatternAdapter struct{}

func (PatternAdapter) Render(ctx context.Context, presetID string, params map[string]any, width, height int, seed string) (*image.RGBA, error) {
	stream := adapterStream("pattern", presetID, seed)
	dst := NewSurface(width, height)

	switch presetID {
	case "bars":
		steps := paramInt(params, "steps", 16)
		if steps < 1 {
			steps = 1
		}
		colors := seededPalette(stream, params, 2)
		// Bar edges at i*width/steps so the remainder spreads across
		// bars instead of leaving an unpainted strip on the right.
		for i := 0; i < steps; i++ {
			level := stream.Float64()
			barHeight := int(level * float64(height))
			c := colors[i%len(colors)]
			fillRect(dst, i*width/steps, height-barHeight, (i+1)*width/steps, height, c)
		}
		return dst, nil

	case "wave":
		colors := seededPalette(stream, params, 1)
		cycles := paramFloat(params, "cycles", 1+stream.Float64()*4)
		phase := stream.Float64() * 2 * math.Pi
		amp := float64(height) * 0.4
		mid := float64(height) / 2
		prevY := mid
		for x := 0; x < width; x++ {
			t := float64(x) / float64(width)
			y := mid + amp*math.Sin(2*math.Pi*cycles*t+phase)
			drawLine(dst, float64(x-1), prevY, float64(x), y, colors[0])
			prevY = y
		}
		return dst, nil

	case "pulse":
		bands := paramInt(params, "bands", 8)
		if bands < 1 {
			bands = 1
		}
		colors := seededPalette(stream, params, 2)
		for i := 0; i < bands; i++ {
			c := colors[i%len(colors)]
			// Intensity modulates band width around the center.
			intensity := stream.Float64()
			inset := int(float64(width) / 2 * (1 - intensity))
			fillRect(dst, inset, i*height/bands, width-inset, (i+1)*height/bands, c)
		}
		return dst, nil

	default:
		return nil, fmt.Errorf("pattern preset %q: %w", presetID, ErrUnknownPreset)
	}
}
