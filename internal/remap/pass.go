package remap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"yoloprep/internal/labels"
	"yoloprep/internal/logging"
)

// NameStats summarizes a name mapping pass.
type NameStats struct {
	Files          int
	Skipped        int
	LinesMapped    int
	UnknownNames   int
	MalformedLines int
}

// MapNames rewrites every label file below dir, replacing species names with
// ids. Unknown names and malformed lines are dropped and logged. Files that
// already carry numeric ids are left untouched.
func MapNames(ctx context.Context, store *labels.Store, dir string, mapper NameMapper, logger *slog.Logger) (NameStats, error) {
	logger = logging.NewComponentLogger(logger, "remap")
	var stats NameStats

	err := store.WalkLabelFiles(dir, func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		lines, err := store.ReadLines(path)
		if err != nil {
			return err
		}
		out, issues, err := mapper.MapLines(lines)
		if errors.Is(err, ErrAlreadyNumeric) {
			stats.Skipped++
			logging.WarnWithContext(logger, "label file already numeric; skipped",
				"remap_already_numeric",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file left unchanged"),
				logging.String(logging.FieldErrorHint, "run convert shift for numeric files instead"),
			)
			return nil
		}
		if err != nil {
			return err
		}
		for _, issue := range issues {
			if errors.Is(issue.Err, ErrUnknownLabelName) {
				stats.UnknownNames++
				logging.WarnWithContext(logger, "unknown label name; line dropped",
					"remap_unknown_name",
					logging.String(logging.FieldPath, path),
					logging.Int("line", issue.Line),
					logging.String("text", issue.Text),
					logging.String(logging.FieldImpact, "box removed from label file"),
					logging.String(logging.FieldErrorHint, "add the species to the catalog or remap.names"),
				)
				continue
			}
			stats.MalformedLines++
			logger.Debug("malformed line dropped",
				logging.String(logging.FieldPath, path),
				logging.Int("line", issue.Line),
				logging.Error(issue.Err),
			)
		}
		if err := store.WriteLines(path, out); err != nil {
			return err
		}
		stats.Files++
		stats.LinesMapped += len(out)
		logger.Debug("label file converted", logging.String(logging.FieldPath, path), logging.Int("lines", len(out)))
		return nil
	})
	if err != nil {
		return stats, err
	}

	logger.Info("name mapping complete",
		logging.Int("files", stats.Files),
		logging.Int("skipped", stats.Skipped),
		logging.Int("lines", stats.LinesMapped),
		logging.Int("unknown_names", stats.UnknownNames),
	)
	return stats, nil
}

// ShiftOptions controls the index shift pass.
type ShiftOptions struct {
	Offset int
	// Force proceeds even when the observed ids suggest a previous shift.
	Force  bool
	Logger *slog.Logger
}

// ShiftStats summarizes an index shift pass.
type ShiftStats struct {
	Files          int
	Skipped        int
	Lines          int
	MalformedLines int
	MinID          int
	MaxID          int
	HasIDs         bool
	// Suspicious is set when the minimum id exceeds the offset.
	Suspicious bool
}

type plannedFile struct {
	path  string
	lines []string
}

// ShiftIndices subtracts the offset from every class id in every split. All
// files are planned before any is written, so a negative id aborts the pass
// with the dataset untouched.
func ShiftIndices(ctx context.Context, store *labels.Store, opts ShiftOptions) (ShiftStats, error) {
	logger := logging.NewComponentLogger(opts.Logger, "remap")
	shifter := Shifter{Offset: opts.Offset}
	var stats ShiftStats
	var plan []plannedFile

	for _, split := range labels.Splits() {
		refs, err := store.List(split)
		if errors.Is(err, labels.ErrSplitMissing) {
			logger.Debug("split directory missing; skipped", logging.String(logging.FieldSplit, split))
			continue
		}
		if err != nil {
			return stats, err
		}
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			path := store.Layout().LabelPath(ref)
			lines, err := store.ReadLines(path)
			if err != nil {
				return stats, err
			}
			result, err := shifter.ShiftLines(lines)
			var negative *NegativeIndexError
			if errors.As(err, &negative) {
				negative.Path = path
				return stats, negative
			}
			if errors.Is(err, ErrNonNumericClass) {
				stats.Skipped++
				logging.WarnWithContext(logger, "label file has species names; skipped",
					"remap_non_numeric",
					logging.String(logging.FieldPath, path),
					logging.Error(err),
					logging.String(logging.FieldImpact, "file left unchanged"),
					logging.String(logging.FieldErrorHint, "run convert names for this file first"),
				)
				continue
			}
			if err != nil {
				return stats, err
			}
			stats.MalformedLines += result.Malformed
			if result.HasIDs {
				if !stats.HasIDs || result.MinID < stats.MinID {
					stats.MinID = result.MinID
				}
				if !stats.HasIDs || result.MaxID > stats.MaxID {
					stats.MaxID = result.MaxID
				}
				stats.HasIDs = true
			}
			plan = append(plan, plannedFile{path: path, lines: result.Lines})
		}
	}

	if stats.HasIDs && opts.Offset > 0 && stats.MinID > opts.Offset {
		stats.Suspicious = true
		attrs := []logging.Attr{
			logging.Int("min_id", stats.MinID),
			logging.Int("offset", opts.Offset),
			logging.String(logging.FieldImpact, "ids may be shifted twice and silently point at the wrong class"),
			logging.String(logging.FieldErrorHint, "run yoloprep index to confirm the id base; pass --force to shift anyway"),
		}
		logging.WarnWithContext(logger, "class ids do not look offset-based", "remap_double_shift", attrs...)
		if !opts.Force {
			return stats, fmt.Errorf("%w: minimum id %d is above offset %d", ErrPossibleDoubleShift, stats.MinID, opts.Offset)
		}
	}

	for _, file := range plan {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := store.WriteLines(file.path, file.lines); err != nil {
			return stats, err
		}
		stats.Files++
		stats.Lines += len(file.lines)
		logger.Debug("label file shifted", logging.String(logging.FieldPath, filepath.Clean(file.path)))
	}

	logger.Info("index shift complete",
		logging.Int("files", stats.Files),
		logging.Int("skipped", stats.Skipped),
		logging.Int("lines", stats.Lines),
		logging.Int("offset", opts.Offset),
	)
	return stats, nil
}
