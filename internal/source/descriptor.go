package source

import (
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
)

// Kind tags the resolved modality of a trait source.
type Kind string

const (
	// KindImage is an embedded or linked raster image, drawn unscaled.
	KindImage Kind = "image"

	// KindShader is a GPU-shader-style procedural preset.
	KindShader Kind = "shader"

	// KindSketch is a generative-sketch procedural preset.
	KindSketch Kind = "sketch"

	// KindPattern is an audio-pattern visualization preset.
	KindPattern Kind = "pattern"

	// KindAIImage is a remote AI-generated image job.
	KindAIImage Kind = "ai-image"
)

// Descriptor tags as written by external editors.
const (
	tagImage   = "image"
	tagShader  = "webgl"
	tagSketch  = "p5"
	tagPattern = "strudel"
	tagAI      = "sd"
)

// isKnownTag reports whether s is one of the descriptor tags.
func isKnownTag(s string) bool {
	switch s {
	case tagImage, tagShader, tagSketch, tagPattern, tagAI:
		return true
	}
	return false
}

// Variant is the resolved, strongly-typed representation of a trait's
// render instructions. Exactly one shape is populated per Kind:
//
//   - KindImage: ImageRef (empty means a fully transparent layer)
//   - KindShader/KindSketch/KindPattern: PresetID + Params
//   - KindAIImage: GraphID, Prompt, Seed, Params
type Variant struct {
	Kind Kind

	// ImageRef is a data URI or file path for KindImage.
	ImageRef string

	// PresetID is the canonical preset identifier after alias
	// resolution.
	PresetID string

	// Params holds decoded preset parameters. Never nil for
	// procedural kinds.
	Params map[string]any

	// GraphID identifies the remote generation graph for KindAIImage.
	GraphID string

	// Prompt is the text prompt for KindAIImage.
	Prompt string

	// Seed is the prompt seed for KindAIImage. Distinct from the
	// render seed: it addresses the remote job, not the local stream.
	Seed string
}

// Blank reports whether the variant renders to a fully transparent
// layer (the fail-closed result for corrupt descriptors).
func (v Variant) Blank() bool {
	return v.Kind == KindImage && v.ImageRef == ""
}

// blankVariant is the fail-closed resolution result.
func blankVariant() Variant {
	return Variant{Kind: KindImage}
}

// Resolve parses a source descriptor into a Variant. It never fails:
// malformed input resolves to the empty raw-image variant with a
// warning, because a corrupt single trait must not abort a collection
// run. See the package documentation for the grammar.
func Resolve(descriptor string) Variant {
	tag, rest, ok := strings.Cut(descriptor, ":")
	if !ok {
		// No tag separator: the whole string is a raw image
		// reference (possibly empty). A bare modality tag is the one
		// exception: it is a truncated descriptor, not a plausible
		// file path, so it fails closed like any other parse error.
		if isKnownTag(descriptor) {
			slog.Warn("source descriptor is a bare modality tag, falling back to blank layer",
				"descriptor", descriptor,
			)
			return blankVariant()
		}
		return Variant{Kind: KindImage, ImageRef: descriptor}
	}

	switch tag {
	case tagImage:
		return Variant{Kind: KindImage, ImageRef: rest}

	case tagShader:
		return resolveProcedural(KindShader, rest, descriptor)

	case tagSketch:
		return resolveProcedural(KindSketch, rest, descriptor)

	case tagPattern:
		return resolveProcedural(KindPattern, rest, descriptor)

	case tagAI:
		return resolveAI(rest, descriptor)

	default:
		// Unknown tag: legacy projects stored bare file paths that
		// may contain colons (e.g. data URIs). Treat as raw image.
		return Variant{Kind: KindImage, ImageRef: descriptor}
	}
}

// resolveProcedural parses "<presetId>[:<percent-encoded-JSON>]" for
// the shader, sketch, and pattern modalities.
func resolveProcedural(kind Kind, rest, descriptor string) Variant {
	presetID, encodedParams, _ := strings.Cut(rest, ":")
	if presetID == "" {
		slog.Warn("source descriptor missing preset id, falling back to blank layer",
			"kind", string(kind),
			"descriptor", descriptor,
		)
		return blankVariant()
	}

	params, err := decodeParams(encodedParams)
	if err != nil {
		slog.Warn("source descriptor has malformed params, falling back to blank layer",
			"kind", string(kind),
			"preset", presetID,
			"error", err,
		)
		return blankVariant()
	}

	return Variant{
		Kind:     kind,
		PresetID: CanonicalPreset(kind, presetID),
		Params:   params,
	}
}

// aiJobSpec is the canonical single-JSON-object encoding of an sd
// descriptor: "sd:{...}".
type aiJobSpec struct {
	GraphID string         `json:"graphId"`
	Seed    string         `json:"seed"`
	Prompt  string         `json:"prompt"`
	Params  map[string]any `json:"params"`
}

// resolveAI parses the sd descriptor in either encoding:
//
//	canonical: sd:{"graphId":..., "seed":..., "prompt":..., "params":{...}}
//	legacy:    sd:<graphId>:<seed>:<pct-encoded-prompt>[:<pct-encoded-JSON-params>]
func resolveAI(rest, descriptor string) Variant {
	if strings.HasPrefix(rest, "{") {
		var spec aiJobSpec
		if err := json.Unmarshal([]byte(rest), &spec); err != nil {
			slog.Warn("sd descriptor has malformed JSON, falling back to blank layer",
				"error", err,
			)
			return blankVariant()
		}
		if spec.GraphID == "" {
			slog.Warn("sd descriptor missing graphId, falling back to blank layer")
			return blankVariant()
		}
		params := spec.Params
		if params == nil {
			params = map[string]any{}
		}
		return Variant{
			Kind:    KindAIImage,
			GraphID: CanonicalPreset(KindAIImage, spec.GraphID),
			Prompt:  spec.Prompt,
			Seed:    spec.Seed,
			Params:  params,
		}
	}

	// Legacy positional encoding.
	parts := strings.SplitN(rest, ":", 4)
	if len(parts) < 3 || parts[0] == "" {
		slog.Warn("sd descriptor has too few segments, falling back to blank layer",
			"descriptor", descriptor,
		)
		return blankVariant()
	}

	prompt, err := url.PathUnescape(parts[2])
	if err != nil {
		slog.Warn("sd descriptor has malformed prompt encoding, falling back to blank layer",
			"error", err,
		)
		return blankVariant()
	}

	params := map[string]any{}
	if len(parts) == 4 && parts[3] != "" {
		params, err = decodeParams(parts[3])
		if err != nil {
			slog.Warn("sd descriptor has malformed params, falling back to blank layer",
				"error", err,
			)
			return blankVariant()
		}
	}

	return Variant{
		Kind:    KindAIImage,
		GraphID: CanonicalPreset(KindAIImage, parts[0]),
		Seed:    parts[1],
		Prompt:  prompt,
		Params:  params,
	}
}

// decodeParams percent-decodes and unmarshals a JSON parameter blob.
// An empty blob decodes to an empty map.
func decodeParams(encoded string) (map[string]any, error) {
	if encoded == "" {
		return map[string]any{}, nil
	}

	raw, err := url.PathUnescape(encoded)
	if err != nil {
		return nil, err
	}

	params := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, err
	}
	return params, nil
}
