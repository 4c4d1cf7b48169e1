// Package materialize writes a split assignment to disk as a new dataset
// under a separate output root, copying each label file and its image into
// the target split.
//
// Copies truncate and overwrite, so running twice with the same inputs
// produces byte-identical output. On the OS filesystem an exclusive flock on
// <output_root>/.yoloprep.lock keeps two runs from interleaving.
package materialize
