// Package compose assembles an ordered stack of raster layers into a
// single RGBA surface.
//
// Layers are drawn strictly in ascending z-index, with ties broken by
// the order layers were appended - a stable sort, so compositing order
// is exactly the trait-class order and is never re-sorted mid-run.
// Each layer applies a photographic blend mode and a multiplicative
// opacity on top of the accumulated destination.
package compose
