package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"yoloprep/internal/fileutil"
	"yoloprep/internal/labels"
	"yoloprep/internal/logging"
	"yoloprep/internal/split"
)

// LockFileName is created in the output root while a run holds it.
const LockFileName = ".yoloprep.lock"

// ErrLocked is returned when another run holds the output root.
var ErrLocked = errors.New("output root is locked by another run")

// MissingImageError reports a label file without a matching image.
type MissingImageError struct {
	Ref   labels.Ref
	Tried []string
}

func (e *MissingImageError) Error() string {
	return fmt.Sprintf("no image for %s (tried %s)", e.Ref, strings.Join(e.Tried, ", "))
}

func (e *MissingImageError) Unwrap() error {
	return labels.ErrImageNotFound
}

// Options configures a materialization run.
type Options struct {
	OutputRoot   string
	VerifyCopies bool
	Logger       *slog.Logger
}

// Result summarizes a run.
type Result struct {
	Labels        int                  `json:"labels"`
	Images        int                  `json:"images"`
	MissingImages []*MissingImageError `json:"-"`
	Collisions    int                  `json:"collisions"`
	Pruned        int                  `json:"pruned"`
	PerSplit      map[string]int       `json:"per_split"`
}

// Run copies every assigned file from the source store into the output root.
func Run(ctx context.Context, source *labels.Store, assignment split.Assignment, opts Options) (Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "materialize")
	result := Result{PerSplit: map[string]int{}}
	if strings.TrimSpace(opts.OutputRoot) == "" {
		return result, errors.New("output root is not set")
	}
	if filepath.Clean(opts.OutputRoot) == filepath.Clean(source.Layout().Root) {
		return result, fmt.Errorf("output root %s must differ from the dataset root", opts.OutputRoot)
	}

	fsys := source.Fs()
	unlock, err := lockOutput(fsys, opts.OutputRoot)
	if err != nil {
		return result, err
	}
	defer unlock()

	out := labels.Layout{Root: opts.OutputRoot}
	for _, name := range labels.Splits() {
		for _, dir := range []string{out.LabelDir(name), out.ImageDir(name)} {
			if err := fsys.MkdirAll(dir, 0o755); err != nil {
				return result, fmt.Errorf("create %s: %w", dir, err)
			}
		}
	}

	copyFile := fileutil.CopyFile
	if opts.VerifyCopies {
		copyFile = fileutil.CopyFileVerified
	}

	claimed := make(map[labels.Ref]labels.Ref)
	written := make(map[string]bool)
	for _, ref := range assignment.Refs() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		target, _ := assignment.Target(ref)
		dest := labels.Ref{Split: target, Name: ref.Name}

		if owner, taken := claimed[dest]; taken {
			result.Collisions++
			logging.WarnWithContext(logger, "destination name already used; file skipped",
				"materialize_collision",
				logging.String(logging.FieldPath, source.Layout().LabelPath(ref)),
				logging.String("kept", owner.String()),
				logging.String(logging.FieldSplit, target),
				logging.String(logging.FieldImpact, "file missing from balanced dataset"),
				logging.String(logging.FieldErrorHint, "rename one of the files so names are unique across splits"),
			)
			continue
		}
		claimed[dest] = ref

		if err := copyFile(fsys, source.Layout().LabelPath(ref), out.LabelPath(dest)); err != nil {
			return result, fmt.Errorf("copy label %s: %w", ref, err)
		}
		written[out.LabelPath(dest)] = true
		result.Labels++
		result.PerSplit[target]++

		imagePath, err := source.FindImage(ref)
		if errors.Is(err, labels.ErrImageNotFound) {
			missing := &MissingImageError{Ref: ref, Tried: source.Extensions()}
			result.MissingImages = append(result.MissingImages, missing)
			logging.WarnWithContext(logger, "no matching image; label copied without image",
				"materialize_missing_image",
				logging.String(logging.FieldPath, source.Layout().LabelPath(ref)),
				logging.Error(missing),
				logging.String(logging.FieldImpact, "label file has no image in the balanced dataset"),
				logging.String(logging.FieldErrorHint, "add the image to the source split"),
			)
			continue
		}
		if err != nil {
			return result, err
		}
		imageDest := filepath.Join(out.ImageDir(target), filepath.Base(imagePath))
		if err := copyFile(fsys, imagePath, imageDest); err != nil {
			return result, fmt.Errorf("copy image %s: %w", imagePath, err)
		}
		written[imageDest] = true
		result.Images++
	}

	pruned, err := prune(fsys, out, written)
	if err != nil {
		return result, err
	}
	result.Pruned = pruned

	logger.Info("balanced dataset written",
		logging.String("output_root", opts.OutputRoot),
		logging.Int("labels", result.Labels),
		logging.Int("images", result.Images),
		logging.Int("missing_images", len(result.MissingImages)),
		logging.Int("collisions", result.Collisions),
		logging.Int("pruned", result.Pruned),
	)
	return result, nil
}

// prune removes split directory entries this run did not write, so no stem
// left over from an earlier assignment appears in two splits.
func prune(fsys afero.Fs, out labels.Layout, written map[string]bool) (int, error) {
	removed := 0
	for _, name := range labels.Splits() {
		for _, dir := range []string{out.LabelDir(name), out.ImageDir(name)} {
			entries, err := afero.ReadDir(fsys, dir)
			if err != nil {
				return removed, fmt.Errorf("list %s: %w", dir, err)
			}
			for _, entry := range entries {
				path := filepath.Join(dir, entry.Name())
				if written[path] {
					continue
				}
				if err := fsys.RemoveAll(path); err != nil {
					return removed, fmt.Errorf("remove stale %s: %w", path, err)
				}
				removed++
			}
		}
	}
	return removed, nil
}

// lockOutput takes the output root lock when the filesystem is the OS one.
func lockOutput(fsys afero.Fs, root string) (func(), error) {
	if _, ok := fsys.(*afero.OsFs); !ok {
		return func() {}, nil
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}
	lock := flock.New(filepath.Join(root, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, root)
	}
	return func() { _ = lock.Unlock() }, nil
}
