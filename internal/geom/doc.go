// Package geom converts bounding boxes between pixel corner form and the
// normalized center/size form stored in label files.
//
// Boxes are immutable values. Normalize classifies its input first: four
// values that all lie in [0,1] are treated as already normalized and returned
// unchanged. Anything else is read as pixel corners (x1, y1, x2, y2).
//
// Known limitation: a pixel box whose raw values all happen to be <= 1 (a box
// hugging the top-left corner of the image) cannot be told apart from a
// normalized box and is passed through unchanged. Callers that know the form
// of their input should use Corners.Normalize directly.
package geom
