// Package render turns resolved trait sources into raster surfaces.
//
// The Dispatcher routes each trait's resolved variant to a
// per-modality adapter (shader, sketch, audio-pattern, raw image, or
// remote AI image) and caches results keyed by (trait, seed, size).
// Concurrent misses for one key coalesce onto a single in-flight
// render, so the cache never does redundant work and never serves a
// partially-written entry. The cache is an optimization only: every
// adapter is a pure function of (preset, params, width, height, seed)
// and all results are reproducible from a cold cache.
//
// The built-in procedural adapters are deliberately small,
// deterministic stand-ins for the external shader/sketch/audio
// engines; the remote AI adapter is a client interface with a durable
// content-hash cache.
package render
