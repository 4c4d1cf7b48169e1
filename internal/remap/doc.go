// Package remap rewrites class tokens in label files.
//
// Two operations live here and never run over the same file:
//
//   - NameMapper turns a species-name class token into its catalog id.
//   - Shifter subtracts a fixed offset from a numeric class id, typically
//     converting 1-based ids to 0-based ones.
//
// The line transforms are pure. MapNames and ShiftIndices wrap them in
// per-file read-transform-write passes over a labels.Store.
package remap
