// Package manifest records pipeline runs in a SQLite database under the
// state directory: when a run happened, with which seed and ratios, where
// every file was assigned, and which consistency findings fired.
//
// The manifest is history only. No stage reads it back as input; every run
// recomputes its index and assignment from the dataset on disk.
package manifest
