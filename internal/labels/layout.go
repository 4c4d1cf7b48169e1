package labels

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	SplitTrain = "train"
	SplitVal   = "val"
	SplitTest  = "test"
)

// Splits returns the split names in processing order.
func Splits() []string {
	return []string{SplitTrain, SplitVal, SplitTest}
}

// ValidSplit reports whether name is a known split.
func ValidSplit(name string) bool {
	switch name {
	case SplitTrain, SplitVal, SplitTest:
		return true
	default:
		return false
	}
}

// LabelExt is the extension of label files.
const LabelExt = ".txt"

// Ref identifies a label file by split and file name.
type Ref struct {
	Split string
	Name  string
}

// Stem returns the file name without its extension; images share it.
func (r Ref) Stem() string {
	return strings.TrimSuffix(r.Name, filepath.Ext(r.Name))
}

func (r Ref) String() string {
	return r.Split + "/" + r.Name
}

// Less orders refs by split then name.
func (r Ref) Less(other Ref) bool {
	if r.Split != other.Split {
		return splitRank(r.Split) < splitRank(other.Split)
	}
	return r.Name < other.Name
}

func splitRank(split string) int {
	for i, name := range Splits() {
		if name == split {
			return i
		}
	}
	return len(Splits())
}

// Layout resolves paths inside a dataset root.
type Layout struct {
	Root string
}

func (l Layout) LabelsDir() string {
	return filepath.Join(l.Root, "labels")
}

func (l Layout) ImagesDir() string {
	return filepath.Join(l.Root, "images")
}

func (l Layout) LabelDir(split string) string {
	return filepath.Join(l.Root, "labels", split)
}

func (l Layout) ImageDir(split string) string {
	return filepath.Join(l.Root, "images", split)
}

// LabelPath returns the label file path for ref.
func (l Layout) LabelPath(ref Ref) string {
	return filepath.Join(l.LabelDir(ref.Split), ref.Name)
}

// ImagePath returns the image path for ref with the given extension.
func (l Layout) ImagePath(ref Ref, ext string) string {
	return filepath.Join(l.ImageDir(ref.Split), ref.Stem()+ext)
}

// Validate reports an error when the root is unset.
func (l Layout) Validate() error {
	if strings.TrimSpace(l.Root) == "" {
		return fmt.Errorf("dataset root is not set")
	}
	return nil
}
