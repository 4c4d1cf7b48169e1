// Package convert runs the coordinate normalization pass over a dataset:
// every label line is rewritten in normalized center/size form using the
// dimensions of the matching image.
package convert
