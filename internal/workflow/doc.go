// Package workflow wires the dataset preparation stages together.
//
// A Pipeline owns the configuration, the label store, the lazily loaded
// class catalog, and the optional run manifest. Each public method runs one
// stage through stageexec so every stage logs the same start, completion,
// and failure events, and every error leaving the package carries a
// pipeline marker (ErrValidation, ErrFatalData, ErrConfiguration,
// ErrNotFound, ErrIO) that the CLI maps to an exit code.
//
// Run chains index, check, audit, split, and materialize, and records the
// run in the manifest when one is attached.
package workflow
