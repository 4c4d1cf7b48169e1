package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed animals.yaml
var defaultCatalog []byte

// ErrInvalidCatalog marks catalog documents that violate the id contract.
var ErrInvalidCatalog = errors.New("invalid class catalog")

// Catalog is an ordered id to name mapping plus the declared class count.
type Catalog struct {
	nc    int
	names []string
	ids   map[string]int
}

type document struct {
	NC    *int      `yaml:"nc"`
	Names yaml.Node `yaml:"names"`
}

// Load reads and parses a catalog file.
func Load(fsys afero.Fs, path string) (*Catalog, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// Default returns the built-in twenty-species catalog.
func Default() *Catalog {
	cat, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return cat
}

// DefaultDocument returns the YAML text of the built-in catalog.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultCatalog...)
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if doc.NC == nil {
		return nil, fmt.Errorf("%w: nc is required", ErrInvalidCatalog)
	}

	var names []string
	switch doc.Names.Kind {
	case yaml.SequenceNode:
		if err := doc.Names.Decode(&names); err != nil {
			return nil, fmt.Errorf("%w: names: %v", ErrInvalidCatalog, err)
		}
	case yaml.MappingNode:
		var byID map[int]string
		if err := doc.Names.Decode(&byID); err != nil {
			return nil, fmt.Errorf("%w: names: %v", ErrInvalidCatalog, err)
		}
		ordered, err := contiguous(byID)
		if err != nil {
			return nil, err
		}
		names = ordered
	case 0:
		return nil, fmt.Errorf("%w: names is required", ErrInvalidCatalog)
	default:
		return nil, fmt.Errorf("%w: names must be a sequence or an id mapping", ErrInvalidCatalog)
	}

	if *doc.NC != len(names) {
		return nil, fmt.Errorf("%w: nc %d does not match %d names", ErrInvalidCatalog, *doc.NC, len(names))
	}
	return New(names)
}

// New builds a catalog whose ids are the indexes of names.
func New(names []string) (*Catalog, error) {
	cat := &Catalog{
		nc:    len(names),
		names: make([]string, len(names)),
		ids:   make(map[string]int, len(names)),
	}
	for id, name := range names {
		key := NormalizeName(name)
		if key == "" {
			return nil, fmt.Errorf("%w: class %d has an empty name", ErrInvalidCatalog, id)
		}
		if prev, dup := cat.ids[key]; dup {
			return nil, fmt.Errorf("%w: name %q used by classes %d and %d", ErrInvalidCatalog, name, prev, id)
		}
		cat.ids[key] = id
		cat.names[id] = strings.TrimSpace(name)
	}
	return cat, nil
}

func contiguous(byID map[int]string) ([]string, error) {
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	names := make([]string, len(ids))
	for i, id := range ids {
		if id != i {
			return nil, fmt.Errorf("%w: ids must be contiguous from 0, found %d at position %d", ErrInvalidCatalog, id, i)
		}
		names[i] = byID[id]
	}
	return names, nil
}

// NC returns the declared class count.
func (c *Catalog) NC() int {
	return c.nc
}

// Names returns a copy of the class names in id order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Name returns the display name for id.
func (c *Catalog) Name(id int) (string, bool) {
	if id < 0 || id >= len(c.names) {
		return "", false
	}
	return c.names[id], true
}

// Lookup resolves a species name to its id. Names are compared after normalization.
func (c *Catalog) Lookup(name string) (int, bool) {
	id, ok := c.ids[NormalizeName(name)]
	return id, ok
}

// NameTable returns the species lookup used by the name mapping pass. Entries
// in overrides replace or extend the catalog-derived names; override ids must
// still be declared by the catalog.
func (c *Catalog) NameTable(overrides map[string]int) (NameTable, error) {
	table := make(map[string]int, len(c.ids)+len(overrides))
	for key, id := range c.ids {
		table[key] = id
	}
	for name, id := range overrides {
		if id < 0 || id >= c.nc {
			return NameTable{}, fmt.Errorf("%w: name %q maps to id %d outside 0..%d", ErrInvalidCatalog, name, id, c.nc-1)
		}
		key := NormalizeName(name)
		if key == "" {
			return NameTable{}, fmt.Errorf("%w: empty override name", ErrInvalidCatalog)
		}
		table[key] = id
	}
	return NameTable{ids: table}, nil
}

// NameTable is an immutable species name to id lookup.
type NameTable struct {
	ids map[string]int
}

// Lookup returns the id for name, or false when the name is unknown.
func (t NameTable) Lookup(name string) (int, bool) {
	id, ok := t.ids[NormalizeName(name)]
	return id, ok
}

// Len returns the number of entries.
func (t NameTable) Len() int {
	return len(t.ids)
}

// NormalizeName trims, collapses inner whitespace, and title-cases a species name.
func NormalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(fields, " "))
}
