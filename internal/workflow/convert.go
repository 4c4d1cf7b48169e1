package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"yoloprep/internal/convert"
	"yoloprep/internal/pipeline"
	"yoloprep/internal/remap"
	"yoloprep/internal/stageexec"
)

// ConvertNames maps species names to ids in every label file below dir. An
// empty dir means the dataset root.
func (p *Pipeline) ConvertNames(ctx context.Context, dir string) (remap.NameStats, error) {
	if strings.TrimSpace(dir) == "" {
		dir = p.cfg.Paths.DatasetRoot
	}
	var stats remap.NameStats
	err := stageexec.Run(ctx, stageexec.Options{Logger: p.logger, StageName: "convert_names"}, func(ctx context.Context, logger *slog.Logger) error {
		cat, err := p.Catalog()
		if err != nil {
			return err
		}
		table, err := cat.NameTable(p.cfg.Remap.Names)
		if err != nil {
			return pipeline.Wrap(pipeline.ErrConfiguration, "convert_names", "name table",
				"remap.names contains an invalid entry", err)
		}
		stats, err = remap.MapNames(ctx, p.store, dir, remap.NewNameMapper(table), logger)
		if err != nil {
			return pipeline.Wrap(pipeline.ErrIO, "convert_names", "map names",
				fmt.Sprintf("Name mapping under %s failed", dir), err)
		}
		return nil
	})
	return stats, err
}

// ConvertCoords rewrites every label line in normalized form.
func (p *Pipeline) ConvertCoords(ctx context.Context) (convert.Stats, error) {
	var stats convert.Stats
	err := stageexec.Run(ctx, stageexec.Options{Logger: p.logger, StageName: "convert_coords"}, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		stats, err = convert.Coordinates(ctx, p.store, logger)
		if errors.Is(err, convert.ErrUnreadableImage) {
			return pipeline.Wrap(pipeline.ErrFatalData, "convert_coords", "read image",
				"An image could not be decoded; fix or remove it and rerun", err)
		}
		if err != nil {
			return pipeline.Wrap(pipeline.ErrIO, "convert_coords", "rewrite labels",
				"Coordinate conversion failed", err)
		}
		return nil
	})
	return stats, err
}

// ConvertShift subtracts offset from every class id. A negative result
// aborts before any file is written.
func (p *Pipeline) ConvertShift(ctx context.Context, offset int, force bool) (remap.ShiftStats, error) {
	var stats remap.ShiftStats
	err := stageexec.Run(ctx, stageexec.Options{Logger: p.logger, StageName: "convert_shift"}, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		stats, err = remap.ShiftIndices(ctx, p.store, remap.ShiftOptions{Offset: offset, Force: force, Logger: logger})
		var negative *remap.NegativeIndexError
		switch {
		case err == nil:
			return nil
		case errors.As(err, &negative):
			return pipeline.Wrap(pipeline.ErrFatalData, "convert_shift", "shift ids",
				fmt.Sprintf("Class id %d in %s line %d would become negative; no files were changed", negative.ID, negative.Path, negative.Line), err)
		case errors.Is(err, remap.ErrPossibleDoubleShift):
			return pipeline.Wrap(pipeline.ErrValidation, "convert_shift", "double shift guard",
				"Ids already look shifted; rerun with --force if the dataset really is offset-based", err)
		default:
			return pipeline.Wrap(pipeline.ErrIO, "convert_shift", "shift ids", "Index shift failed", err)
		}
	})
	return stats, err
}
