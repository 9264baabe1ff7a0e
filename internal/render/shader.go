package render

import (
	"context"
	"fmt"
	"image"
	"math"
)

// ShaderAdapter is the built-in stand-in for the external
// shader-execution engine. Presets: gradient, plasma, rings.
type ShaderAdapter struct{}

func (ShaderAdapter) Render(ctx context.Context, presetID string, params map[string]any, width, height int, seed string) (*image.RGBA, error) {
	stream := adapterStream("shader", presetID, seed)
	dst := NewSurface(width, height)

	switch presetID {
	case "gradient":
		colors := seededPalette(stream, params, 2)
		if len(colors) < 2 {
			colors = append(colors, colors[0])
		}
		angle := paramFloat(params, "angle", float64(stream.IntN(360))) * math.Pi / 180
		dx, dy := math.Cos(angle), math.Sin(angle)
		// Project each pixel onto the gradient axis; normalize by the
		// surface diagonal so t stays in [0, 1].
		diag := math.Hypot(float64(width), float64(height))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				t := (float64(x)*dx + float64(y)*dy + diag/2) / diag
				dst.SetRGBA(x, y, lerpColor(colors[0], colors[1], t))
			}
		}
		return dst, nil

	case "plasma":
		colors := seededPalette(stream, params, 2)
		if len(colors) < 2 {
			colors = append(colors, colors[0])
		}
		f1 := paramFloat(params, "freq", 0.03+stream.Float64()*0.05)
		p1 := stream.Float64() * 2 * math.Pi
		p2 := stream.Float64() * 2 * math.Pi
		p3 := stream.Float64() * 2 * math.Pi
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				v := math.Sin(float64(x)*f1+p1) +
					math.Sin(float64(y)*f1*1.3+p2) +
					math.Sin(float64(x+y)*f1*0.7+p3)
				t := (v + 3) / 6
				dst.SetRGBA(x, y, lerpColor(colors[0], colors[1], t))
			}
		}
		return dst, nil

	case "rings":
		colors := seededPalette(stream, params, 2)
		if len(colors) < 2 {
			colors = append(colors, colors[0])
		}
		ringWidth := paramFloat(params, "ring_width", 8+float64(stream.IntN(24)))
		cx := float64(width) / 2
		cy := float64(height) / 2
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r := math.Hypot(float64(x)-cx, float64(y)-cy)
				idx := int(r/ringWidth) % len(colors)
				dst.SetRGBA(x, y, colors[idx])
			}
		}
		return dst, nil

	default:
		return nil, fmt.Errorf("shader preset %q: %w", presetID, ErrUnknownPreset)
	}
}
