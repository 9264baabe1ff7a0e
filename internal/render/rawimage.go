package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// renderImage decodes an embedded or linked image reference and draws
// it unscaled at the origin of a width x height surface. An empty
// reference is the blank layer: a fully transparent surface.
//
// Supported reference forms:
//   - "" (blank)
//   - "data:image/...;base64,<payload>" (embedded)
//   - a file path, resolved against root when relative
func renderImage(ref, root string, width, height int) (*image.RGBA, error) {
	dst := NewSurface(width, height)
	if ref == "" {
		return dst, nil
	}

	src, err := decodeImageRef(ref, root)
	if err != nil {
		return nil, err
	}

	// Unscaled draw: the source keeps its native resolution and is
	// clipped to the target bounds.
	bounds := src.Bounds()
	target := image.Rect(0, 0, bounds.Dx(), bounds.Dy())
	draw.Draw(dst, target, src, bounds.Min, draw.Over)
	return dst, nil
}

// decodeImageRef loads the referenced image via data URI or file path.
func decodeImageRef(ref, root string) (image.Image, error) {
	if strings.HasPrefix(ref, "data:") {
		_, payload, ok := strings.Cut(ref, ",")
		if !ok {
			return nil, fmt.Errorf("malformed data URI")
		}
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode data URI payload: %w", err)
		}
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decode embedded image: %w", err)
		}
		return img, nil
	}

	path := ref
	if !filepath.IsAbs(path) && root != "" {
		path = filepath.Join(root, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image file: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image file %s: %w", path, err)
	}
	return img, nil
}
