// Package pipeline defines the shared plumbing consumed by every dataset
// preparation stage.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and split
//     names so log lines can be correlated across a single invocation.
//   - Structured error markers plus the Wrap helper that classify stage
//     failures (bad data, bad configuration, missing inputs, I/O).
//
// Use these helpers when wiring new stage logic so failures read the same
// way whether they come from conversion passes, indexing, or materialization.
package pipeline
