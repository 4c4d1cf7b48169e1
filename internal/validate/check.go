package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"yoloprep/internal/catalog"
	"yoloprep/internal/index"
)

// ErrIDRangeViolation is returned by Report.Err when a blocking finding fired.
var ErrIDRangeViolation = errors.New("class id range violation")

// Code identifies a kind of finding.
type Code string

const (
	CodeOneBased    Code = "one_based"
	CodeOutOfRange  Code = "out_of_range"
	CodeNegativeID  Code = "negative_id"
	CodeEmptyClass  Code = "empty_class"
	CodeEmptyCorpus Code = "empty_corpus"
)

// Severity ranks findings for display.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding is one consistency observation.
type Finding struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	ClassIDs []int    `json:"class_ids,omitempty"`
}

// Options selects which findings block the pipeline.
type Options struct {
	AbortOnOutOfRange bool
	AbortOnOneBased   bool
}

// Report is the result of Check.
type Report struct {
	NC           int       `json:"nc"`
	FilesScanned int       `json:"files_scanned"`
	MinID        *int      `json:"min_id,omitempty"`
	MaxID        *int      `json:"max_id,omitempty"`
	Findings     []Finding `json:"findings"`
}

// Check compares index statistics with the catalog.
func Check(idx *index.Index, cat *catalog.Catalog) Report {
	report := Report{
		NC:           cat.NC(),
		FilesScanned: idx.FilesScanned(),
		Findings:     []Finding{},
	}

	minID, maxID, ok := idx.IDRange()
	if !ok {
		report.add(Finding{
			Code:     CodeEmptyCorpus,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("no labeled files found (%d files scanned)", idx.FilesScanned()),
		})
		return report
	}
	report.MinID = &minID
	report.MaxID = &maxID

	if minID == 1 {
		report.add(Finding{
			Code:     CodeOneBased,
			Severity: SeverityWarning,
			Message:  "labels appear 1-based, expected 0-based",
		})
	}
	if maxID >= cat.NC() {
		report.add(Finding{
			Code:     CodeOutOfRange,
			Severity: SeverityError,
			Message:  fmt.Sprintf("max id %d >= nc %d", maxID, cat.NC()),
			ClassIDs: outOfRange(idx, cat.NC()),
		})
	}
	if minID < 0 {
		report.add(Finding{
			Code:     CodeNegativeID,
			Severity: SeverityError,
			Message:  fmt.Sprintf("min id %d is negative", minID),
		})
	}

	var empty []int
	for id := 0; id < cat.NC(); id++ {
		if idx.FileCount(id) == 0 {
			empty = append(empty, id)
		}
	}
	if len(empty) > 0 {
		report.add(Finding{
			Code:     CodeEmptyClass,
			Severity: SeverityInfo,
			Message:  fmt.Sprintf("%d declared classes have no files: %s", len(empty), joinInts(empty)),
			ClassIDs: empty,
		})
	}
	return report
}

func (r *Report) add(f Finding) {
	r.Findings = append(r.Findings, f)
}

// Has reports whether a finding with code is present.
func (r Report) Has(code Code) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// Blocking returns the findings that stop the pipeline under opts.
func (r Report) Blocking(opts Options) []Finding {
	var blocking []Finding
	for _, f := range r.Findings {
		switch f.Code {
		case CodeOutOfRange, CodeNegativeID:
			if opts.AbortOnOutOfRange {
				blocking = append(blocking, f)
			}
		case CodeOneBased:
			if opts.AbortOnOneBased {
				blocking = append(blocking, f)
			}
		}
	}
	return blocking
}

// Err returns ErrIDRangeViolation describing every blocking finding, or nil.
func (r Report) Err(opts Options) error {
	blocking := r.Blocking(opts)
	if len(blocking) == 0 {
		return nil
	}
	messages := make([]string, len(blocking))
	for i, f := range blocking {
		messages[i] = f.Message
	}
	return fmt.Errorf("%w: %s", ErrIDRangeViolation, strings.Join(messages, "; "))
}

func outOfRange(idx *index.Index, nc int) []int {
	var ids []int
	for _, class := range idx.Classes() {
		if class >= nc {
			ids = append(ids, class)
		}
	}
	return ids
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
