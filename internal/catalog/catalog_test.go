package catalog_test

import (
	"errors"
	"testing"

	"github.com/spf13/afero"

	"yoloprep/internal/catalog"
)

func TestDefaultCatalog(t *testing.T) {
	cat := catalog.Default()
	if cat.NC() != 20 {
		t.Fatalf("unexpected nc: got %d want 20", cat.NC())
	}
	if id, ok := cat.Lookup("harbor  SEAL"); !ok || id != 8 {
		t.Fatalf("unexpected lookup: got %d %v want 8 true", id, ok)
	}
	if name, ok := cat.Name(19); !ok || name != "Butterfly" {
		t.Fatalf("unexpected name: got %q %v", name, ok)
	}
	if _, ok := cat.Name(20); ok {
		t.Fatal("expected id 20 to be undeclared")
	}
}

func TestLoadMappingNames(t *testing.T) {
	fsys := afero.NewMemMapFs()
	doc := "nc: 3\nnames:\n  2: Lion\n  0: Zebra\n  1: Tiger\n"
	if err := afero.WriteFile(fsys, "/data/animals.yaml", []byte(doc), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	cat, err := catalog.Load(fsys, "/data/animals.yaml")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	got := cat.Names()
	want := []string{"Zebra", "Tiger", "Lion"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names[%d]: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"missing nc":      "names: [Zebra]\n",
		"missing names":   "nc: 1\n",
		"count mismatch":  "nc: 20\nnames: [Zebra, Tiger]\n",
		"gap in mapping":  "nc: 2\nnames:\n  0: Zebra\n  2: Tiger\n",
		"duplicate names": "nc: 2\nnames: [Zebra, ' zebra ']\n",
		"empty name":      "nc: 2\nnames: [Zebra, '']\n",
		"scalar names":    "nc: 1\nnames: Zebra\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(doc))
			if !errors.Is(err, catalog.ErrInvalidCatalog) {
				t.Fatalf("expected ErrInvalidCatalog, got %v", err)
			}
		})
	}
}

func TestNameTableOverrides(t *testing.T) {
	cat := catalog.Default()
	table, err := cat.NameTable(map[string]int{"seal": 8})
	if err != nil {
		t.Fatalf("NameTable returned error: %v", err)
	}
	if id, ok := table.Lookup("Seal"); !ok || id != 8 {
		t.Fatalf("override lookup: got %d %v", id, ok)
	}
	if id, ok := table.Lookup("zebra"); !ok || id != 0 {
		t.Fatalf("catalog lookup: got %d %v", id, ok)
	}
	if _, ok := table.Lookup("Unicorn"); ok {
		t.Fatal("expected unknown name to miss")
	}
	if _, err := cat.NameTable(map[string]int{"Unicorn": 20}); !errors.Is(err, catalog.ErrInvalidCatalog) {
		t.Fatalf("expected out-of-range override to fail, got %v", err)
	}
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"  harbor   seal ": "Harbor Seal",
		"ZEBRA":            "Zebra",
		"":                 "",
	}
	for in, want := range cases {
		if got := catalog.NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q): got %q want %q", in, got, want)
		}
	}
}
