package remap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"yoloprep/internal/labels"
)

// Shifter subtracts Offset from numeric class ids.
type Shifter struct {
	Offset int
}

// ShiftLine rewrites the class token of one line and leaves the box values
// untouched. A result below zero returns *NegativeIndexError.
func (s Shifter) ShiftLine(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) != labels.TokensPerLine {
		return "", fmt.Errorf("%w: expected %d tokens, got %d", labels.ErrMalformedLine, labels.TokensPerLine, len(fields))
	}
	id, err := labels.ParseClass(fields[0])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrNonNumericClass, fields[0])
	}
	shifted := id - s.Offset
	if shifted < 0 {
		return "", &NegativeIndexError{ID: id, Offset: s.Offset}
	}
	fields[0] = strconv.Itoa(shifted)
	return strings.Join(fields, " "), nil
}

// ShiftResult is the planned rewrite of one file.
type ShiftResult struct {
	Lines     []string
	Malformed int
	MinID     int
	MaxID     int
	HasIDs    bool
}

// ShiftLines plans the rewrite of a whole file. Malformed lines are dropped.
// The first negative result or non-numeric class token aborts the file.
func (s Shifter) ShiftLines(lines []string) (ShiftResult, error) {
	result := ShiftResult{Lines: make([]string, 0, len(lines))}
	for i, line := range lines {
		shifted, err := s.ShiftLine(line)
		if err != nil {
			var negative *NegativeIndexError
			switch {
			case errors.As(err, &negative):
				negative.Line = i + 1
				return ShiftResult{}, negative
			case errors.Is(err, ErrNonNumericClass):
				return ShiftResult{}, fmt.Errorf("line %d: %w", i+1, err)
			default:
				result.Malformed++
				continue
			}
		}
		id, _ := labels.ParseClass(strings.Fields(line)[0])
		if !result.HasIDs || id < result.MinID {
			result.MinID = id
		}
		if !result.HasIDs || id > result.MaxID {
			result.MaxID = id
		}
		result.HasIDs = true
		result.Lines = append(result.Lines, shifted)
	}
	return result, nil
}
