package validate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"yoloprep/internal/catalog"
	"yoloprep/internal/geom"
	"yoloprep/internal/labels"
	"yoloprep/internal/logging"
)

const (
	defaultSampleSize = 5
	defaultColor      = "#ff0000"
	defaultLineWidth  = 2
	jpegQuality       = 90
)

// AuditOptions controls ground-truth rendering.
type AuditOptions struct {
	SampleSize int
	Color      string
	LineWidth  float64
	// Catalog, when set, labels boxes with class names instead of ids.
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

// AuditResult lists the rendered files.
type AuditResult struct {
	Rendered []string
	Skipped  int
}

// RenderAudit draws the boxes of the first SampleSize label files that have a
// matching image onto that image and writes a JPEG named after the label
// file into outDir.
func RenderAudit(ctx context.Context, store *labels.Store, outDir string, opts AuditOptions) (AuditResult, error) {
	logger := logging.NewComponentLogger(opts.Logger, "audit")
	if opts.SampleSize <= 0 {
		opts.SampleSize = defaultSampleSize
	}
	if opts.Color == "" {
		opts.Color = defaultColor
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = defaultLineWidth
	}

	fsys := store.Fs()
	if err := fsys.MkdirAll(outDir, 0o755); err != nil {
		return AuditResult{}, fmt.Errorf("create audit dir: %w", err)
	}

	var result AuditResult
	written := make(map[string]struct{})

	for _, split := range labels.Splits() {
		refs, err := store.List(split)
		if errors.Is(err, labels.ErrSplitMissing) {
			continue
		}
		if err != nil {
			return result, err
		}
		for _, ref := range refs {
			if len(result.Rendered) >= opts.SampleSize {
				return result, nil
			}
			if err := ctx.Err(); err != nil {
				return result, err
			}
			imagePath, err := store.FindImage(ref)
			if err != nil {
				continue
			}
			file, err := store.Read(ref)
			if err != nil {
				return result, err
			}
			img, err := decodeImage(store, imagePath)
			if err != nil {
				result.Skipped++
				logging.WarnWithContext(logger, "audit image unreadable; skipped",
					"audit_image_unreadable",
					logging.String(logging.FieldPath, imagePath),
					logging.Error(err),
					logging.String(logging.FieldImpact, "one fewer audit sample"),
				)
				continue
			}

			name := ref.Stem() + ".jpg"
			if _, dup := written[name]; dup {
				name = ref.Split + "_" + name
			}
			written[name] = struct{}{}
			outPath := filepath.Join(outDir, name)
			if err := writeAudit(store, outPath, drawBoxes(img, file, opts)); err != nil {
				return result, err
			}
			result.Rendered = append(result.Rendered, outPath)
			logger.Debug("audit image written",
				logging.String(logging.FieldPath, outPath),
				logging.Int("boxes", len(file.Lines)),
			)
		}
	}
	return result, nil
}

func decodeImage(store *labels.Store, path string) (image.Image, error) {
	f, err := store.Fs().Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func drawBoxes(img image.Image, file labels.File, opts AuditOptions) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	dc := gg.NewContextForImage(img)
	dc.SetHexColor(opts.Color)
	dc.SetLineWidth(opts.LineWidth)
	dc.SetFontFace(basicfont.Face7x13)

	for _, line := range file.Lines {
		box := geom.Corners{X1: line.Values[0], Y1: line.Values[1], X2: line.Values[2], Y2: line.Values[3]}
		if geom.Classify(line.Values) == geom.FormNormalized {
			normalized := geom.Normalized{XC: line.Values[0], YC: line.Values[1], W: line.Values[2], H: line.Values[3]}
			box = normalized.Denormalize(width, height)
		}
		dc.DrawRectangle(box.X1, box.Y1, box.X2-box.X1, box.Y2-box.Y1)
		dc.Stroke()
		dc.DrawString(boxLabel(line.Class, opts.Catalog), box.X1, box.Y1-6)
	}
	return dc.Image()
}

func boxLabel(class int, cat *catalog.Catalog) string {
	if cat != nil {
		if name, ok := cat.Name(class); ok {
			return fmt.Sprintf("%d %s", class, name)
		}
	}
	return strconv.Itoa(class)
}

func writeAudit(store *labels.Store, path string, img image.Image) error {
	out, err := store.Fs().Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}
