// Package source resolves opaque trait source descriptors into typed
// variants.
//
// Descriptors are colon-delimited strings whose first segment is a
// modality tag (webgl, p5, strudel, sd) followed by a preset ID and a
// percent-encoded JSON parameter blob. Anything that does not start
// with a known tag is treated as a raw image reference; a known tag
// with nothing after it is a truncated descriptor and fails closed
// instead. The sd tag
// additionally accepts a canonical single-JSON-object form and a
// legacy positional form for backward compatibility.
//
// Resolution NEVER returns an error: a malformed descriptor fails
// closed to the empty raw-image variant so one corrupt trait degrades
// to a blank layer instead of blocking a whole collection run. All
// downstream code pattern-matches on the resolved Variant; the raw
// descriptor string is never inspected past this boundary.
package source
