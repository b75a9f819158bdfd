// Package types defines the shared vocabulary of smckit: typed errors with
// stable categories, SMC key and type identifiers, and KeyInfo, the value
// copy of a key that crosses package boundaries.
//
// Design goals:
//   - Typed errors with stable categories (not-found/wrong-mode/rejected/...)
//     so callers branch on kind, not text.
//   - Small value types instead of shared mutable handles at API edges.
//
// This package has no dependencies beyond the standard library.
package types
