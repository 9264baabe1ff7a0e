// Package trait provides the canonical data model for tessera.
//
// This package contains type definitions and identity helpers only. All
// other internal packages import trait; trait imports nothing internal.
// This keeps the data model the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Trait classes are composited in ascending ZIndex; ties break by
//     declaration order, which is therefore significant and preserved.
//   - Rules reference trait identity, never class identity.
//   - DNA is computed from NFC-normalized identifiers so that visually
//     identical project files hash identically across platforms.
//   - All JSON tags use snake_case.
package trait
