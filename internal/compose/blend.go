package compose

import "fmt"

// BlendMode names a photographic blend operation applied when a layer
// is drawn over the accumulated composite.
type BlendMode string

const (
	BlendNormal   BlendMode = "normal"
	BlendMultiply BlendMode = "multiply"
	BlendScreen   BlendMode = "screen"
	BlendAdditive BlendMode = "additive"
	BlendOverlay  BlendMode = "overlay"
	BlendDarken   BlendMode = "darken"
	BlendLighten  BlendMode = "lighten"
)

// ParseBlendMode validates a blend mode name from a project file.
// The empty string means normal.
func ParseBlendMode(name string) (BlendMode, error) {
	switch BlendMode(name) {
	case "", BlendNormal:
		return BlendNormal, nil
	case BlendMultiply, BlendScreen, BlendAdditive, BlendOverlay, BlendDarken, BlendLighten:
		return BlendMode(name), nil
	default:
		return "", fmt.Errorf("unknown blend mode %q", name)
	}
}

// blendChannel combines one source and destination channel value in
// [0, 1] according to the mode. Additive clamps at 1.
func blendChannel(mode BlendMode, s, d float64) float64 {
	switch mode {
	case BlendMultiply:
		return s * d
	case BlendScreen:
		return 1 - (1-s)*(1-d)
	case BlendAdditive:
		v := s + d
		if v > 1 {
			return 1
		}
		return v
	case BlendOverlay:
		if d <= 0.5 {
			return 2 * s * d
		}
		return 1 - 2*(1-s)*(1-d)
	case BlendDarken:
		if s < d {
			return s
		}
		return d
	case BlendLighten:
		if s > d {
			return s
		}
		return d
	default: // BlendNormal
		return s
	}
}
