// Command yoloprep prepares YOLO object-detection datasets for training.
//
// Subcommands convert annotations to the canonical normalized format
// (convert names, convert coords, convert shift), inspect a dataset
// (index, check), produce a balanced train/val/test copy (split, run), and
// browse recorded runs (history). Exit codes: 0 success, 1 unexpected
// failure, 2 validation or fatal data problems, 3 configuration problems.
package main
