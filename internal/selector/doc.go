// Package selector implements deterministic weighted trait selection.
//
// Selection is a pure function of the seed string: the seed is hashed
// with SHA-256 and the digest seeds a PCG stream, so the same seed
// always yields the same draws regardless of process, platform, or
// call order elsewhere in the program.
//
// One stream is created per selection call and consumed sequentially,
// one draw per selectable class in class declaration order. Appending
// an unrelated class to the end of a project therefore never changes
// the outcome of earlier classes under the same seed.
package selector
