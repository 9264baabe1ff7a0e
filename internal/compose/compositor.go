package compose

import (
	"image"
	"image/color"
	"sort"
)

// Layer is one raster surface queued for compositing.
type Layer struct {
	// Surface is the rendered trait layer. Must match the composite
	// dimensions; the dispatcher guarantees this.
	Surface *image.RGBA

	// Mode is the blend mode applied when drawing this layer.
	Mode BlendMode

	// Opacity scales the layer's alpha multiplicatively in [0, 1].
	Opacity float64

	// ZIndex orders this layer in the stack. Values need not be
	// contiguous or unique.
	ZIndex int
}

// Compose draws the layers in ascending ZIndex into a new width x
// height surface. The sort is stable: layers sharing a ZIndex keep
// their input order, which callers derive from class declaration
// order. The input slice is not mutated.
//
// The destination starts fully transparent. Each layer's color is
// first combined with the destination color by its blend mode, then
// alpha-composited over with effective alpha = srcAlpha * opacity.
func Compose(width, height int, layers []Layer) *image.RGBA {
	ordered := make([]Layer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ZIndex < ordered[j].ZIndex
	})

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for _, layer := range ordered {
		drawLayer(dst, layer)
	}
	return dst
}

// drawLayer blends one layer into dst in place.
func drawLayer(dst *image.RGBA, layer Layer) {
	if layer.Surface == nil {
		return
	}

	opacity := layer.Opacity
	if opacity <= 0 {
		if opacity == 0 {
			// Zero value means unset: treat as fully opaque. An
			// intentionally invisible layer uses a blank surface.
			opacity = 1
		} else {
			return
		}
	}
	if opacity > 1 {
		opacity = 1
	}

	bounds := dst.Bounds().Intersect(layer.Surface.Bounds())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			blendPixel(dst, layer.Surface, x, y, layer.Mode, opacity)
		}
	}
}

// blendPixel combines src pixel (x, y) into dst pixel (x, y).
// image.RGBA stores alpha-premultiplied channels (the image/draw
// contract); blend math runs on straight color in float64 and the
// result is stored premultiplied again.
func blendPixel(dst, src *image.RGBA, x, y int, mode BlendMode, opacity float64) {
	sp := src.RGBAAt(x, y)
	sa := float64(sp.A) / 255 * opacity
	if sa == 0 {
		return
	}

	dp := dst.RGBAAt(x, y)
	da := float64(dp.A) / 255

	sr, sg, sb := straight(sp)
	dr, dg, db := straight(dp)

	// Blend modes other than normal only make sense against existing
	// destination coverage; where the destination is transparent the
	// source color passes through unchanged.
	br, bg, bb := sr, sg, sb
	if da > 0 {
		br = blendChannel(mode, sr, dr)
		bg = blendChannel(mode, sg, dg)
		bb = blendChannel(mode, sb, db)
	}

	// Standard over operator; accumulating premultiplied terms needs
	// no division by the output alpha.
	outA := sa + da*(1-sa)
	outR := br*sa + dr*da*(1-sa)
	outG := bg*sa + dg*da*(1-sa)
	outB := bb*sa + db*da*(1-sa)

	dst.SetRGBA(x, y, rgba(outR, outG, outB, outA))
}

// straight converts a premultiplied pixel to straight channels in
// [0, 1]. Channels are clamped to the alpha so malformed inputs
// (channel > alpha) cannot blend out of range.
func straight(p color.RGBA) (r, g, b float64) {
	if p.A == 0 {
		return 0, 0, 0
	}
	a := float64(p.A)
	return clamp1(float64(p.R) / a), clamp1(float64(p.G) / a), clamp1(float64(p.B) / a)
}

func clamp1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}

func rgba(r, g, b, a float64) color.RGBA {
	return color.RGBA{
		R: clamp8(r),
		G: clamp8(g),
		B: clamp8(b),
		A: clamp8(a),
	}
}

func clamp8(v float64) uint8 {
	scaled := v*255 + 0.5
	if scaled <= 0 {
		return 0
	}
	if scaled >= 255 {
		return 255
	}
	return uint8(scaled)
}
