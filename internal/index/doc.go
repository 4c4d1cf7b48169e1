// Package index scans every split of a dataset and records which label files
// contain which classes, along with id range statistics.
//
// Lines with the wrong token count or a non-integer class are dropped
// silently; partially edited datasets are full of them. Missing split
// directories are skipped.
package index
