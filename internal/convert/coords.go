package convert

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"

	"yoloprep/internal/geom"
	"yoloprep/internal/labels"
	"yoloprep/internal/logging"
)

// ErrUnreadableImage is returned when an image exists but cannot be decoded.
var ErrUnreadableImage = errors.New("unreadable image")

// Stats summarizes a coordinate pass.
type Stats struct {
	Files          int
	MissingImages  int
	Converted      int
	PassedThrough  int
	MalformedLines int
}

// NormalizeLines converts every line of a file to normalized form for an
// image of the given size. Malformed lines are dropped and counted.
func NormalizeLines(lines []string, width, height int) ([]string, Stats, error) {
	var stats Stats
	out := make([]string, 0, len(lines))
	for _, text := range lines {
		line, err := labels.ParseLine(text)
		if err != nil {
			stats.MalformedLines++
			continue
		}
		if geom.Classify(line.Values) == geom.FormNormalized {
			stats.PassedThrough++
		} else {
			stats.Converted++
		}
		normalized, err := geom.Normalize(line.Values, width, height)
		if err != nil {
			return nil, stats, err
		}
		out = append(out, labels.Line{Class: line.Class, Values: normalized.Values()}.String())
	}
	return out, stats, nil
}

// ImageSize decodes only the header of an image file.
func ImageSize(store *labels.Store, path string) (int, int, error) {
	file, err := store.Fs().Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Coordinates rewrites every label file in every split. Files without an
// image are skipped and logged; an image that exists but cannot be read
// aborts the pass.
func Coordinates(ctx context.Context, store *labels.Store, logger *slog.Logger) (Stats, error) {
	logger = logging.NewComponentLogger(logger, "convert")
	var total Stats

	for _, split := range labels.Splits() {
		refs, err := store.List(split)
		if errors.Is(err, labels.ErrSplitMissing) {
			logger.Debug("split directory missing; skipped", logging.String(logging.FieldSplit, split))
			continue
		}
		if err != nil {
			return total, err
		}
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			imagePath, err := store.FindImage(ref)
			if errors.Is(err, labels.ErrImageNotFound) {
				total.MissingImages++
				logging.WarnWithContext(logger, "no matching image; label file skipped",
					"convert_missing_image",
					logging.String(logging.FieldPath, store.Layout().LabelPath(ref)),
					logging.String("extensions", strings.Join(store.Extensions(), ",")),
					logging.String(logging.FieldImpact, "label coordinates left unconverted"),
					logging.String(logging.FieldErrorHint, "add the image or remove the label file"),
				)
				continue
			}
			if err != nil {
				return total, err
			}
			width, height, err := ImageSize(store, imagePath)
			if err != nil {
				return total, err
			}

			var fileStats Stats
			err = store.Rewrite(store.Layout().LabelPath(ref), func(lines []string) ([]string, error) {
				out, stats, err := NormalizeLines(lines, width, height)
				fileStats = stats
				return out, err
			})
			if err != nil {
				return total, err
			}
			total.Files++
			total.Converted += fileStats.Converted
			total.PassedThrough += fileStats.PassedThrough
			total.MalformedLines += fileStats.MalformedLines
			if fileStats.PassedThrough > 0 {
				logger.Debug("lines already in [0,1] passed through unchanged",
					logging.String(logging.FieldPath, store.Layout().LabelPath(ref)),
					logging.Int("lines", fileStats.PassedThrough),
				)
			}
		}
	}

	logger.Info("coordinate conversion complete",
		logging.Int("files", total.Files),
		logging.Int("converted_lines", total.Converted),
		logging.Int("passed_through_lines", total.PassedThrough),
		logging.Int("missing_images", total.MissingImages),
	)
	return total, nil
}
