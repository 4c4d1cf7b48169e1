package remap

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLabelName is returned when a species name is not in the name table.
	ErrUnknownLabelName = errors.New("unknown label name")
	// ErrAlreadyNumeric is returned when the name mapper sees a numeric class token.
	ErrAlreadyNumeric = errors.New("class token is already numeric")
	// ErrNonNumericClass is returned when the shifter sees a non-numeric class token.
	ErrNonNumericClass = errors.New("class token is not numeric")
	// ErrPossibleDoubleShift is returned when the observed ids suggest the
	// dataset was already shifted and the caller did not force the pass.
	ErrPossibleDoubleShift = errors.New("class ids look already shifted")
)

// NegativeIndexError reports a class id that would become negative after the
// shift. It is fatal for the whole pass.
type NegativeIndexError struct {
	Path   string
	Line   int
	ID     int
	Offset int
}

func (e *NegativeIndexError) Error() string {
	location := e.Path
	if location == "" {
		location = "<line>"
	}
	if e.Line > 0 {
		location = fmt.Sprintf("%s:%d", location, e.Line)
	}
	return fmt.Sprintf("negative class id at %s: id %d minus offset %d", location, e.ID, e.Offset)
}
