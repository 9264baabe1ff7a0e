// Package store provides the durable content-addressable cache for
// remote AI-image results.
//
// Entries are keyed by the BLAKE3 content hash of the full job spec
// (graph, prompt, seed, params, dimensions), so an identical job is a
// cache hit across process restarts and re-exports. The cache is an
// optimization, never a correctness mechanism: every result must be
// reproducible from a cold cache by re-issuing the remote job.
//
// Uses SQLite with WAL mode for concurrent read access. Writes are
// idempotent (ON CONFLICT DO NOTHING), so at-most-one-writer-wins
// under concurrent population and a partially-written entry is never
// observable.
package store
