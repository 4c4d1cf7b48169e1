package remap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"yoloprep/internal/catalog"
	"yoloprep/internal/labels"
)

// NameMapper replaces species-name class tokens with catalog ids.
type NameMapper struct {
	table catalog.NameTable
}

func NewNameMapper(table catalog.NameTable) NameMapper {
	return NameMapper{table: table}
}

// MapLine rewrites one line. The class name is every token before the last
// four, so multi-word species such as "Harbor seal" resolve.
func (m NameMapper) MapLine(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) < labels.TokensPerLine {
		return "", fmt.Errorf("%w: expected at least %d tokens, got %d", labels.ErrMalformedLine, labels.TokensPerLine, len(fields))
	}
	split := len(fields) - 4
	if split == 1 && labels.IsNumericClass(fields[0]) {
		return "", fmt.Errorf("%w: %q", ErrAlreadyNumeric, fields[0])
	}
	name := strings.Join(fields[:split], " ")
	id, ok := m.table.Lookup(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabelName, name)
	}
	mapped := strconv.Itoa(id) + " " + strings.Join(fields[split:], " ")
	if _, err := labels.ParseLine(mapped); err != nil {
		return "", err
	}
	return mapped, nil
}

// LineIssue describes a line dropped by a transform.
type LineIssue struct {
	Line int
	Text string
	Err  error
}

// MapLines applies MapLine to every line. Unknown names and malformed lines
// are dropped and reported; a numeric class token anywhere aborts the file
// with ErrAlreadyNumeric.
func (m NameMapper) MapLines(lines []string) ([]string, []LineIssue, error) {
	out := make([]string, 0, len(lines))
	var issues []LineIssue
	for i, line := range lines {
		mapped, err := m.MapLine(line)
		if err != nil {
			if errors.Is(err, ErrAlreadyNumeric) {
				return nil, nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			issues = append(issues, LineIssue{Line: i + 1, Text: line, Err: err})
			continue
		}
		out = append(out, mapped)
	}
	return out, issues, nil
}
