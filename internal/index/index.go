package index

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"yoloprep/internal/labels"
	"yoloprep/internal/logging"
)

// Index maps class ids to the label files containing them.
type Index struct {
	members      map[int]map[labels.Ref]struct{}
	boxes        map[int]int
	minID        int
	maxID        int
	hasIDs       bool
	filesScanned int
	unlabeled    int
	dropped      int
	splits       map[string]int
}

// New returns an empty index.
func New() *Index {
	return &Index{
		members: make(map[int]map[labels.Ref]struct{}),
		boxes:   make(map[int]int),
		splits:  make(map[string]int),
	}
}

// Add records one parsed label file.
func (idx *Index) Add(file labels.File) {
	idx.filesScanned++
	idx.splits[file.Ref.Split]++
	idx.dropped += file.Dropped
	if len(file.Lines) == 0 {
		idx.unlabeled++
		return
	}
	for _, line := range file.Lines {
		idx.boxes[line.Class]++
		if !idx.hasIDs || line.Class < idx.minID {
			idx.minID = line.Class
		}
		if !idx.hasIDs || line.Class > idx.maxID {
			idx.maxID = line.Class
		}
		idx.hasIDs = true
	}
	for _, class := range file.ClassesPresent() {
		set, ok := idx.members[class]
		if !ok {
			set = make(map[labels.Ref]struct{})
			idx.members[class] = set
		}
		set[file.Ref] = struct{}{}
	}
}

// Classes returns the observed class ids in ascending order.
func (idx *Index) Classes() []int {
	classes := make([]int, 0, len(idx.members))
	for class := range idx.members {
		classes = append(classes, class)
	}
	sort.Ints(classes)
	return classes
}

// Members returns the files containing class, ordered by split then name.
func (idx *Index) Members(class int) []labels.Ref {
	set := idx.members[class]
	refs := make([]labels.Ref, 0, len(set))
	for ref := range set {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs
}

// Files returns every labeled file, ordered by split then name.
func (idx *Index) Files() []labels.Ref {
	seen := make(map[labels.Ref]struct{})
	for _, set := range idx.members {
		for ref := range set {
			seen[ref] = struct{}{}
		}
	}
	refs := make([]labels.Ref, 0, len(seen))
	for ref := range seen {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs
}

// FileCount returns the number of files containing class.
func (idx *Index) FileCount(class int) int {
	return len(idx.members[class])
}

// BoxCount returns the number of boxes of class.
func (idx *Index) BoxCount(class int) int {
	return idx.boxes[class]
}

// IDRange returns the minimum and maximum observed class id. ok is false
// when no valid line was seen.
func (idx *Index) IDRange() (minID, maxID int, ok bool) {
	return idx.minID, idx.maxID, idx.hasIDs
}

func (idx *Index) FilesScanned() int {
	return idx.filesScanned
}

// Unlabeled returns the number of scanned files without a valid line.
func (idx *Index) Unlabeled() int {
	return idx.unlabeled
}

// DroppedLines returns the number of malformed lines skipped while scanning.
func (idx *Index) DroppedLines() int {
	return idx.dropped
}

// SplitFiles returns the number of files scanned in split.
func (idx *Index) SplitFiles(split string) int {
	return idx.splits[split]
}

// Build scans every split of the store's dataset.
func Build(ctx context.Context, store *labels.Store, logger *slog.Logger) (*Index, error) {
	logger = logging.NewComponentLogger(logger, "index")
	idx := New()

	for _, split := range labels.Splits() {
		refs, err := store.List(split)
		if errors.Is(err, labels.ErrSplitMissing) {
			logger.Debug("split directory missing; skipped", logging.String(logging.FieldSplit, split))
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			file, err := store.Read(ref)
			if err != nil {
				return nil, err
			}
			idx.Add(file)
		}
		logger.Debug("split scanned",
			logging.String(logging.FieldSplit, split),
			logging.Int("files", len(refs)),
		)
	}

	attrs := []logging.Attr{
		logging.Int("files_scanned", idx.FilesScanned()),
		logging.Int("classes", len(idx.members)),
		logging.Int("unlabeled_files", idx.Unlabeled()),
	}
	if minID, maxID, ok := idx.IDRange(); ok {
		attrs = append(attrs, logging.Int("min_id", minID), logging.Int("max_id", maxID))
	}
	logger.Info("dataset indexed", logging.Args(attrs...)...)
	return idx, nil
}
