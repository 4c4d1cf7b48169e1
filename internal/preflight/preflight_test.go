package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yoloprep/internal/catalog"
	"yoloprep/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCreatableDirectory(t *testing.T) {
	base := t.TempDir()
	result := CheckCreatableDirectory("out", filepath.Join(base, "a", "b"))
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("expected creatable, got: %+v", result)
	}

	f := filepath.Join(base, "file")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckCreatableDirectory("out", filepath.Join(f, "child")); result.Passed {
		t.Fatal("expected failure below a regular file")
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DatasetRoot = filepath.Join(base, "dataset")
	cfg.Paths.OutputRoot = filepath.Join(base, "balanced")
	cfg.Paths.AuditDir = filepath.Join(base, "audit")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.CatalogFile = filepath.Join(base, "animals.yaml")

	if err := Err(RunAll(&cfg)); err == nil {
		t.Fatal("expected failure before the dataset exists")
	}

	if err := os.MkdirAll(filepath.Join(cfg.Paths.DatasetRoot, "labels", "train"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.Paths.CatalogFile, catalog.DefaultDocument(), 0o644); err != nil {
		t.Fatal(err)
	}
	results := RunAll(&cfg)
	if err := Err(results); err != nil {
		t.Fatalf("expected all checks to pass: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 checks with audit enabled, got %d", len(results))
	}
}
