package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// NewSurface allocates a fully transparent width x height surface.
func NewSurface(width, height int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// parseHexColor parses "#rrggbb" or "#rgb" into an opaque color.
func parseHexColor(s string) (color.RGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	hex := s[1:]

	nibble := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}

	byteAt := func(i int) (uint8, bool) {
		hi, ok1 := nibble(hex[i])
		lo, ok2 := nibble(hex[i+1])
		return hi<<4 | lo, ok1 && ok2
	}

	switch len(hex) {
	case 6:
		r, ok1 := byteAt(0)
		g, ok2 := byteAt(2)
		b, ok3 := byteAt(4)
		if !ok1 || !ok2 || !ok3 {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
		return color.RGBA{R: r, G: g, B: b, A: 255}, nil
	case 3:
		var c [3]uint8
		for i := 0; i < 3; i++ {
			n, ok := nibble(hex[i])
			if !ok {
				return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
			}
			c[i] = n<<4 | n
		}
		return color.RGBA{R: c[0], G: c[1], B: c[2], A: 255}, nil
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
}

// paramColors extracts a "colors" parameter ([]string of hex values).
// Invalid entries are skipped; an empty result defers to the caller's
// seeded default.
func paramColors(params map[string]any) []color.RGBA {
	raw, ok := params["colors"].([]any)
	if !ok {
		return nil
	}
	var out []color.RGBA
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		c, err := parseHexColor(s)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// paramFloat extracts a numeric parameter with a default.
func paramFloat(params map[string]any, key string, def float64) float64 {
	if v, ok := params[key].(float64); ok {
		return v
	}
	return def
}

// paramInt extracts an integer parameter with a default. JSON decodes
// numbers as float64, so that is the only shape checked.
func paramInt(params map[string]any, key string, def int) int {
	if v, ok := params[key].(float64); ok {
		return int(v)
	}
	return def
}

// lerpColor interpolates between two colors at t in [0, 1].
func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: lerp(a.A, b.A),
	}
}

// drawLine plots a straight segment with uniform sampling. Good
// enough for the procedural sketch adapter; anti-aliasing is not a
// goal.
func drawLine(dst *image.RGBA, x0, y0, x1, y1 float64, c color.RGBA) {
	steps := int(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(x0 + (x1-x0)*t)
		y := int(y0 + (y1-y0)*t)
		if image.Pt(x, y).In(dst.Bounds()) {
			dst.SetRGBA(x, y, c)
		}
	}
}

// fillCircle rasterizes a filled disc.
func fillCircle(dst *image.RGBA, cx, cy, r float64, c color.RGBA) {
	minX := int(cx - r)
	maxX := int(cx + r)
	minY := int(cy - r)
	maxY := int(cy + r)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= r*r && image.Pt(x, y).In(dst.Bounds()) {
				dst.SetRGBA(x, y, c)
			}
		}
	}
}

// fillRect fills the given pixel rectangle, clipped to dst.
func fillRect(dst *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	rect := image.Rect(x0, y0, x1, y1).Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.SetRGBA(x, y, c)
		}
	}
}
