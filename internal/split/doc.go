// Package split assigns indexed label files to train, val, and test so each
// class is spread across the splits in roughly the configured proportions.
//
// Classes are balanced independently, in ascending id order. Within a class
// the member files are sorted, then shuffled by a single generator seeded
// once per run, so the same index and seed always yield the same assignment.
//
// Multi-label files are resolved by precedence: a file held out (val or
// test) by an earlier class stays held out; a file only lands in train when
// no class held it out. A later class can promote an earlier train
// assignment to val or test. Ratios are therefore exact for single-label
// files only. Classes sharing files with earlier classes drift, and Summary
// reports the realized counts so the drift is visible.
package split
