// Package export orchestrates collection generation and archive
// packaging.
//
// For each edition 1..N a token seed is derived from the master seed,
// the token is generated (selection, constraint repair, per-trait
// render, composite, metadata), and the result lands in a zip archive
// with a top-level manifest. Tokens are independent and
// order-insensitive: generating edition 7 never depends on editions
// 1-6, and batch boundaries never affect a token's content - batching
// only bounds peak concurrent render work.
//
// Error policy: a failed trait render fails that one edition (reported
// in the manifest's failed list), constraint residue after bounded
// repair is an audited count rather than an error, and an archive
// write failure aborts the whole export.
package export
