package labels

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

var (
	// ErrImageNotFound is returned when no image matches a label file.
	ErrImageNotFound = errors.New("image not found")
	// ErrSplitMissing is returned when a split directory does not exist.
	ErrSplitMissing = errors.New("split directory missing")
)

// DefaultImageExtensions is the image probe order.
var DefaultImageExtensions = []string{".jpg", ".jpeg", ".png"}

// Store reads and writes label files under a dataset layout.
type Store struct {
	fs         afero.Fs
	layout     Layout
	extensions []string
}

// NewStore returns a store rooted at root. A nil fs uses the OS filesystem.
func NewStore(fsys afero.Fs, root string, extensions []string) *Store {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if len(extensions) == 0 {
		extensions = DefaultImageExtensions
	}
	return &Store{
		fs:         fsys,
		layout:     Layout{Root: root},
		extensions: append([]string(nil), extensions...),
	}
}

func (s *Store) Fs() afero.Fs {
	return s.fs
}

func (s *Store) Layout() Layout {
	return s.layout
}

// Extensions returns the image probe order.
func (s *Store) Extensions() []string {
	return append([]string(nil), s.extensions...)
}

// List returns the label files of a split sorted by name. A missing split
// directory yields ErrSplitMissing.
func (s *Store) List(split string) ([]Ref, error) {
	dir := s.layout.LabelDir(split)
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSplitMissing, dir)
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	refs := make([]Ref, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), LabelExt) {
			continue
		}
		refs = append(refs, Ref{Split: split, Name: entry.Name()})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs, nil
}

// Read parses a label file, dropping lines that fail to parse.
func (s *Store) Read(ref Ref) (File, error) {
	raw, err := s.ReadLines(s.layout.LabelPath(ref))
	if err != nil {
		return File{}, err
	}
	file := File{Ref: ref, Lines: make([]Line, 0, len(raw))}
	for _, text := range raw {
		line, err := ParseLine(text)
		if err != nil {
			file.Dropped++
			continue
		}
		file.Lines = append(file.Lines, line)
	}
	return file, nil
}

// ReadLines returns the non-blank lines of a file with surrounding whitespace trimmed.
func (s *Store) ReadLines(path string) ([]string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return lines, nil
}

// WriteLines overwrites path with lines, one per line.
func (s *Store) WriteLines(path string, lines []string) error {
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := afero.WriteFile(s.fs, path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Rewrite reads path, applies transform, and overwrites the file with the
// result. Nothing is written when transform fails.
func (s *Store) Rewrite(path string, transform func([]string) ([]string, error)) error {
	lines, err := s.ReadLines(path)
	if err != nil {
		return err
	}
	out, err := transform(lines)
	if err != nil {
		return err
	}
	return s.WriteLines(path, out)
}

// WalkLabelFiles calls fn for every label file below dir in lexical order.
func (s *Store) WalkLabelFiles(dir string, fn func(path string) error) error {
	return afero.Walk(s.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(path), LabelExt) {
			return nil
		}
		return fn(path)
	})
}

// FindImage probes the configured extensions for the image matching ref in
// its split's image directory.
func (s *Store) FindImage(ref Ref) (string, error) {
	for _, ext := range s.extensions {
		candidate := s.layout.ImagePath(ref, ext)
		info, err := s.fs.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s (tried %s)", ErrImageNotFound, ref, strings.Join(s.extensions, ", "))
}
