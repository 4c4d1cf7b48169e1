package labels

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"yoloprep/internal/geom"
)

// ErrMalformedLine reports a label line with the wrong token count or a non-numeric field.
var ErrMalformedLine = errors.New("malformed label line")

// TokensPerLine is the number of whitespace-separated tokens in a label line.
const TokensPerLine = 5

// Line is one parsed box: class id plus four box values.
type Line struct {
	Class  int
	Values [4]float64
}

// ParseLine parses a numeric label line.
func ParseLine(text string) (Line, error) {
	fields := strings.Fields(text)
	if len(fields) != TokensPerLine {
		return Line{}, fmt.Errorf("%w: expected %d tokens, got %d", ErrMalformedLine, TokensPerLine, len(fields))
	}
	class, err := ParseClass(fields[0])
	if err != nil {
		return Line{}, err
	}
	var line Line
	line.Class = class
	for i, field := range fields[1:] {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			return Line{}, fmt.Errorf("%w: value %d %q is not a number", ErrMalformedLine, i+1, field)
		}
		line.Values[i] = value
	}
	return line, nil
}

// ParseClass parses an integer class token. Integral decimals such as "3.0"
// are accepted because some annotation tools emit them. Ids beyond the int32
// range are rejected.
func ParseClass(token string) (int, error) {
	value, err := strconv.ParseFloat(token, 64)
	if err != nil || value != math.Trunc(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: class %q is not an integer", ErrMalformedLine, token)
	}
	if math.Abs(value) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: class %q is out of range", ErrMalformedLine, token)
	}
	return int(value), nil
}

// IsNumericClass reports whether token parses as a class id.
func IsNumericClass(token string) bool {
	_, err := ParseClass(token)
	return err == nil
}

// String renders the line with fixed six-decimal precision.
func (l Line) String() string {
	return strconv.Itoa(l.Class) + " " + geom.FormatValues(l.Values)
}

// File is the parsed content of one label file.
type File struct {
	Ref   Ref
	Lines []Line
	// Dropped counts lines that failed to parse.
	Dropped int
}

// ClassesPresent returns the distinct class ids in the file, ascending.
func (f File) ClassesPresent() []int {
	seen := make(map[int]struct{}, len(f.Lines))
	classes := make([]int, 0, len(f.Lines))
	for _, line := range f.Lines {
		if _, ok := seen[line.Class]; ok {
			continue
		}
		seen[line.Class] = struct{}{}
		classes = append(classes, line.Class)
	}
	sort.Ints(classes)
	return classes
}
