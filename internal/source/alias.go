package source

// Per-modality alias tables mapping preset IDs from previously-saved
// projects to their canonical IDs. Resolution applies these after
// parsing so downstream dispatch only ever sees canonical names.
//
// Aliases are append-only: renaming a preset adds a row here, it never
// rewrites stored project files.
var presetAliases = map[Kind]map[string]string{
	KindShader: {
		"linear-gradient": "gradient",
		"grad":            "gradient",
		"plasma-classic":  "plasma",
		"ring":            "rings",
	},
	KindSketch: {
		"lines":     "strokes",
		"hatch":     "strokes",
		"noise-dot": "dots",
	},
	KindPattern: {
		"step-seq": "bars",
		"waveform": "wave",
	},
	KindAIImage: {
		"sd15":    "sd-1.5",
		"default": "sd-1.5",
	},
}

// CanonicalPreset maps a possibly-legacy preset ID to its canonical
// form. Unknown IDs pass through unchanged; missing presets surface as
// adapter errors at render time, not here.
func CanonicalPreset(kind Kind, presetID string) string {
	if table, ok := presetAliases[kind]; ok {
		if canonical, ok := table[presetID]; ok {
			return canonical
		}
	}
	return presetID
}
