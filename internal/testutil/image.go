// Package testutil provides deterministic fixtures shared across
// test packages.
package testutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// SolidPNG returns the PNG encoding of a width x height image filled
// with a single color. Encoding a fixed input is deterministic, so
// the bytes are stable across runs.
func SolidPNG(width, height int, c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		// Encoding an in-memory RGBA image cannot fail.
		panic(err)
	}
	return buf.Bytes()
}

// PNGDataURI wraps PNG bytes in a base64 data URI usable as a raw
// image trait source.
func PNGDataURI(raw []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)
}
