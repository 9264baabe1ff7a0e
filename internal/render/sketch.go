package render

import (
	"context"
	"fmt"
	"image"
)

// SketchAdapter is the built-in stand-in for the external
// generative-sketch engine. Presets: strokes, scribble, dots.
type SketchAdapter struct{}

func (SketchAdapter) Render(ctx context.Context, presetID string, params map[string]any, width, height int, seed string) (*image.RGBA, error) {
	stream := adapterStream("sketch", presetID, seed)
	dst := NewSurface(width, height)
	w := float64(width)
	h := float64(height)

	switch presetID {
	case "strokes":
		count := paramInt(params, "count", 24)
		colors := seededPalette(stream, params, 3)
		for i := 0; i < count; i++ {
			c := colors[stream.IntN(len(colors))]
			drawLine(dst,
				stream.Float64()*w, stream.Float64()*h,
				stream.Float64()*w, stream.Float64()*h,
				c)
		}
		return dst, nil

	case "scribble":
		steps := paramInt(params, "steps", 200)
		colors := seededPalette(stream, params, 1)
		x := stream.Float64() * w
		y := stream.Float64() * h
		for i := 0; i < steps; i++ {
			nx := x + (stream.Float64()-0.5)*w*0.2
			ny := y + (stream.Float64()-0.5)*h*0.2
			drawLine(dst, x, y, nx, ny, colors[0])
			x, y = nx, ny
		}
		return dst, nil

	case "dots":
		count := paramInt(params, "count", 60)
		maxRadius := paramFloat(params, "max_radius", w/16)
		colors := seededPalette(stream, params, 4)
		for i := 0; i < count; i++ {
			c := colors[stream.IntN(len(colors))]
			fillCircle(dst,
				stream.Float64()*w, stream.Float64()*h,
				1+stream.Float64()*maxRadius,
				c)
		}
		return dst, nil

	default:
		return nil, fmt.Errorf("sketch preset %q: %w", presetID, ErrUnknownPreset)
	}
}
