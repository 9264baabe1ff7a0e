// Package harness provides a conformance testing framework for the
// tessera generation pipeline.
//
// Scenarios are YAML files pairing a project file with assertions
// about the tokens it deterministically produces: which trait a given
// edition selects, how many constraint violations were repaired,
// whether DNA values are unique. Because generation is a pure function
// of (project, edition), scenarios are reproducible anywhere and their
// results can be snapshotted as golden files.
//
// The harness runs the real pipeline with the built-in deterministic
// adapters and a fixed run-ID generator. Nothing is mocked, so a
// passing scenario is evidence about production behavior, not about
// the harness itself.
package harness
