package remap_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/spf13/afero"

	"yoloprep/internal/catalog"
	"yoloprep/internal/labels"
	"yoloprep/internal/remap"
)

func newMapper(t *testing.T) remap.NameMapper {
	t.Helper()
	table, err := catalog.Default().NameTable(nil)
	if err != nil {
		t.Fatalf("NameTable returned error: %v", err)
	}
	return remap.NewNameMapper(table)
}

func TestMapLine(t *testing.T) {
	mapper := newMapper(t)
	cases := map[string]string{
		"Zebra 10 20 30 40":           "0 10 20 30 40",
		"Harbor seal 1 2 3 4":         "8 1 2 3 4",
		"  butterfly 0.1 0.2 0.3 0.4": "19 0.1 0.2 0.3 0.4",
	}
	for in, want := range cases {
		got, err := mapper.MapLine(in)
		if err != nil {
			t.Fatalf("MapLine(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("MapLine(%q): got %q want %q", in, got, want)
		}
	}
}

func TestMapLineErrors(t *testing.T) {
	mapper := newMapper(t)
	cases := map[string]error{
		"Unicorn 1 2 3 4": remap.ErrUnknownLabelName,
		"3 1 2 3 4":       remap.ErrAlreadyNumeric,
		"Zebra 1 2 3":     labels.ErrMalformedLine,
		"Zebra 1 2 x 4":   labels.ErrMalformedLine,
	}
	for in, want := range cases {
		if _, err := mapper.MapLine(in); !errors.Is(err, want) {
			t.Fatalf("MapLine(%q): got %v want %v", in, err, want)
		}
	}
}

func TestShiftLine(t *testing.T) {
	shifter := remap.Shifter{Offset: 1}
	for id := 1; id < 25; id++ {
		got, err := shifter.ShiftLine(strconv.Itoa(id) + " 0.5 0.5 0.1 0.1")
		if err != nil {
			t.Fatalf("ShiftLine(%d) returned error: %v", id, err)
		}
		if want := strconv.Itoa(id-1) + " 0.5 0.5 0.1 0.1"; got != want {
			t.Fatalf("ShiftLine(%d): got %q want %q", id, got, want)
		}
	}

	_, err := shifter.ShiftLine("0 10 10 20 20")
	var negative *remap.NegativeIndexError
	if !errors.As(err, &negative) {
		t.Fatalf("expected NegativeIndexError, got %v", err)
	}
	if negative.ID != 0 || negative.Offset != 1 {
		t.Fatalf("unexpected error detail: %+v", negative)
	}

	if _, err := shifter.ShiftLine("Zebra 1 2 3 4"); !errors.Is(err, remap.ErrNonNumericClass) {
		t.Fatalf("expected ErrNonNumericClass, got %v", err)
	}
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fsys, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestShiftIndicesAbortsBeforeWriting(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/data/labels/train/a.txt", "2 0.5 0.5 0.1 0.1\n")
	writeFile(t, fsys, "/data/labels/train/b.txt", "0 10 10 20 20\n")
	store := labels.NewStore(fsys, "/data", nil)

	_, err := remap.ShiftIndices(context.Background(), store, remap.ShiftOptions{Offset: 1})
	var negative *remap.NegativeIndexError
	if !errors.As(err, &negative) {
		t.Fatalf("expected NegativeIndexError, got %v", err)
	}
	if negative.Path != "/data/labels/train/b.txt" || negative.Line != 1 || negative.ID != 0 {
		t.Fatalf("unexpected error detail: %+v", negative)
	}
	if got := readFile(t, fsys, "/data/labels/train/a.txt"); got != "2 0.5 0.5 0.1 0.1\n" {
		t.Fatalf("a.txt written despite abort: %q", got)
	}
}

func TestShiftIndicesRewritesAllSplits(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/data/labels/train/a.txt", "1 0.5 0.5 0.1 0.1\n3 0.2 0.2 0.1 0.1\nbad\n")
	writeFile(t, fsys, "/data/labels/test/c.txt", "20 0.5 0.5 0.1 0.1\n")
	store := labels.NewStore(fsys, "/data", nil)

	stats, err := remap.ShiftIndices(context.Background(), store, remap.ShiftOptions{Offset: 1})
	if err != nil {
		t.Fatalf("ShiftIndices returned error: %v", err)
	}
	if stats.Files != 2 || stats.MalformedLines != 1 || stats.MinID != 1 || stats.MaxID != 20 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if got := readFile(t, fsys, "/data/labels/train/a.txt"); got != "0 0.5 0.5 0.1 0.1\n2 0.2 0.2 0.1 0.1\n" {
		t.Fatalf("unexpected train content: %q", got)
	}
	if got := readFile(t, fsys, "/data/labels/test/c.txt"); got != "19 0.5 0.5 0.1 0.1\n" {
		t.Fatalf("unexpected test content: %q", got)
	}
}

func TestShiftIndicesGuardsAgainstDoubleShift(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/data/labels/train/a.txt", "4 0.5 0.5 0.1 0.1\n")
	store := labels.NewStore(fsys, "/data", nil)

	stats, err := remap.ShiftIndices(context.Background(), store, remap.ShiftOptions{Offset: 1})
	if !errors.Is(err, remap.ErrPossibleDoubleShift) || !stats.Suspicious {
		t.Fatalf("expected ErrPossibleDoubleShift, got %v (%+v)", err, stats)
	}
	if got := readFile(t, fsys, "/data/labels/train/a.txt"); got != "4 0.5 0.5 0.1 0.1\n" {
		t.Fatalf("file written without force: %q", got)
	}

	if _, err := remap.ShiftIndices(context.Background(), store, remap.ShiftOptions{Offset: 1, Force: true}); err != nil {
		t.Fatalf("forced shift returned error: %v", err)
	}
	if got := readFile(t, fsys, "/data/labels/train/a.txt"); got != "3 0.5 0.5 0.1 0.1\n" {
		t.Fatalf("unexpected forced content: %q", got)
	}
}

func TestMapNamesDropsUnknownAndSkipsNumeric(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/raw/Zebra/z1.txt", "Zebra 1 2 3 4\nUnicorn 1 2 3 4\nHarbor seal 5 6 7 8\n")
	writeFile(t, fsys, "/raw/Lion/l1.txt", "4 1 2 3 4\n")
	store := labels.NewStore(fsys, "/raw", nil)

	stats, err := remap.MapNames(context.Background(), store, "/raw", newMapper(t), nil)
	if err != nil {
		t.Fatalf("MapNames returned error: %v", err)
	}
	if stats.Files != 1 || stats.Skipped != 1 || stats.UnknownNames != 1 || stats.LinesMapped != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if got := readFile(t, fsys, "/raw/Zebra/z1.txt"); got != "0 1 2 3 4\n8 5 6 7 8\n" {
		t.Fatalf("unexpected mapped content: %q", got)
	}
	if got := readFile(t, fsys, "/raw/Lion/l1.txt"); got != "4 1 2 3 4\n" {
		t.Fatalf("numeric file changed: %q", got)
	}
}
