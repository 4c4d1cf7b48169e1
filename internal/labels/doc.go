// Package labels reads and writes YOLO text label files and knows the
// two-root dataset layout (images/<split>, labels/<split>).
//
// A label line is "<class> <v1> <v2> <v3> <v4>". Parsing is strict about
// the token count and numeric fields and reports ErrMalformedLine; callers
// decide whether to drop the line or fail. File rewrites go through Store.Rewrite,
// a read-transform-write scope per file whose transform is a pure function
// over the file's lines.
//
// All file access goes through an afero filesystem so passes can be tested
// against an in-memory tree.
package labels
