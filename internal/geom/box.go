package geom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDimensions is returned when an image width or height is not positive.
var ErrInvalidDimensions = errors.New("image dimensions must be positive")

// Form identifies how the four values of a label line are encoded.
type Form int

const (
	FormNormalized Form = iota
	FormCorners
)

func (f Form) String() string {
	switch f {
	case FormNormalized:
		return "normalized"
	case FormCorners:
		return "corners"
	default:
		return "unknown"
	}
}

// Corners is a box in absolute pixel coordinates.
type Corners struct {
	X1, Y1, X2, Y2 float64
}

// Normalized is a box in image-relative center/size form.
type Normalized struct {
	XC, YC, W, H float64
}

// Classify reports FormNormalized when all four values lie in [0,1].
func Classify(v [4]float64) Form {
	for _, value := range v {
		if value < 0 || value > 1 {
			return FormCorners
		}
	}
	return FormNormalized
}

// Normalize converts four raw label values to normalized form using the image
// dimensions. Values already in [0,1] are returned unchanged.
func Normalize(v [4]float64, width, height int) (Normalized, error) {
	if Classify(v) == FormNormalized {
		return Normalized{XC: v[0], YC: v[1], W: v[2], H: v[3]}, nil
	}
	return Corners{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}.Normalize(width, height)
}

// Normalize converts pixel corners to normalized form. Each result is clamped to [0,1].
func (c Corners) Normalize(width, height int) (Normalized, error) {
	if width <= 0 || height <= 0 {
		return Normalized{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	w, h := float64(width), float64(height)
	return Normalized{
		XC: clamp01((c.X1 + c.X2) / 2 / w),
		YC: clamp01((c.Y1 + c.Y2) / 2 / h),
		W:  clamp01((c.X2 - c.X1) / w),
		H:  clamp01((c.Y2 - c.Y1) / h),
	}, nil
}

// Valid reports whether the corners describe a non-empty box.
func (c Corners) Valid() bool {
	return c.X1 < c.X2 && c.Y1 < c.Y2
}

// Denormalize converts the box back to pixel corners for an image of the given size.
func (n Normalized) Denormalize(width, height int) Corners {
	w, h := float64(width), float64(height)
	halfW, halfH := n.W*w/2, n.H*h/2
	cx, cy := n.XC*w, n.YC*h
	return Corners{X1: cx - halfW, Y1: cy - halfH, X2: cx + halfW, Y2: cy + halfH}
}

// Values returns the four fields in label-file order.
func (n Normalized) Values() [4]float64 {
	return [4]float64{n.XC, n.YC, n.W, n.H}
}

// Format renders the four fields with fixed six-decimal precision.
func (n Normalized) Format() string {
	return FormatValues(n.Values())
}

// FormatValues renders four label values with fixed six-decimal precision.
func FormatValues(v [4]float64) string {
	parts := make([]string, len(v))
	for i, value := range v {
		parts[i] = strconv.FormatFloat(value, 'f', 6, 64)
	}
	return strings.Join(parts, " ")
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
