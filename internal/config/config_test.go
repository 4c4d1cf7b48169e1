package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"yoloprep/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "yoloprep")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.DatasetRoot) {
		t.Fatalf("expected absolute dataset root, got %q", cfg.Paths.DatasetRoot)
	}
	if cfg.Split.ValRatio != 0.1 || cfg.Split.TestRatio != 0.1 {
		t.Fatalf("unexpected ratios: %v %v", cfg.Split.ValRatio, cfg.Split.TestRatio)
	}
	if cfg.Split.Seed != 42 {
		t.Fatalf("unexpected seed: %d", cfg.Split.Seed)
	}
	if cfg.Remap.Offset != 1 {
		t.Fatalf("unexpected remap offset: %d", cfg.Remap.Offset)
	}
	if !cfg.Checks.AbortOnOutOfRange {
		t.Fatal("expected out-of-range findings to abort by default")
	}
	if cfg.Checks.AbortOnOneBased {
		t.Fatal("expected one-based findings to warn only by default")
	}
	want := []string{".jpg", ".jpeg", ".png"}
	if strings.Join(cfg.Materialize.ImageExtensions, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected image extensions: %v", cfg.Materialize.ImageExtensions)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.StateDir); err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
	if cfg.ManifestPath() != filepath.Join(wantState, "manifest.db") {
		t.Fatalf("unexpected manifest path: %q", cfg.ManifestPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "yoloprep.toml")

	type payload struct {
		Paths struct {
			DatasetRoot string `toml:"dataset_root"`
			OutputRoot  string `toml:"output_root"`
		} `toml:"paths"`
		Split struct {
			ValRatio  float64 `toml:"val_ratio"`
			TestRatio float64 `toml:"test_ratio"`
			Seed      uint64  `toml:"seed"`
		} `toml:"split"`
		Materialize struct {
			ImageExtensions []string `toml:"image_extensions"`
		} `toml:"materialize"`
		Remap struct {
			Names map[string]int `toml:"names"`
		} `toml:"remap"`
	}
	custom := payload{}
	custom.Paths.DatasetRoot = filepath.Join(tempDir, "raw")
	custom.Paths.OutputRoot = filepath.Join(tempDir, "balanced")
	custom.Split.ValRatio = 0.2
	custom.Split.TestRatio = 0.05
	custom.Split.Seed = 7
	custom.Materialize.ImageExtensions = []string{"PNG", " .jpg ", "png"}
	custom.Remap.Names = map[string]int{" Zebra ": 0, "Harbor seal": 8}

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.DatasetRoot != filepath.Join(tempDir, "raw") {
		t.Fatalf("unexpected dataset root: %q", cfg.Paths.DatasetRoot)
	}
	if cfg.Split.ValRatio != 0.2 || cfg.Split.TestRatio != 0.05 || cfg.Split.Seed != 7 {
		t.Fatalf("unexpected split section: %+v", cfg.Split)
	}
	if got := strings.Join(cfg.Materialize.ImageExtensions, ","); got != ".png,.jpg" {
		t.Fatalf("unexpected normalized extensions: %q", got)
	}
	if id, ok := cfg.Remap.Names["Zebra"]; !ok || id != 0 {
		t.Fatalf("expected trimmed name key, got %v", cfg.Remap.Names)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "yoloprep.toml")
	if err := os.WriteFile(configPath, []byte("[split]\nval_ration = 0.2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"val ratio", func(c *config.Config) { c.Split.ValRatio = 1.5 }, "split.val_ratio"},
		{"ratio sum", func(c *config.Config) { c.Split.ValRatio = 0.5; c.Split.TestRatio = 0.5 }, "must be less than 1"},
		{"offset", func(c *config.Config) { c.Remap.Offset = -1 }, "remap.offset"},
		{"same roots", func(c *config.Config) { c.Paths.OutputRoot = c.Paths.DatasetRoot }, "must differ"},
		{"color", func(c *config.Config) { c.Audit.Color = "red" }, "audit.color"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative name id", func(c *config.Config) { c.Remap.Names = map[string]int{"Lion": -2} }, "remap.names"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("unexpected error: got %q want fragment %q", err.Error(), tc.want)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(target); err != nil || !exists {
		t.Fatalf("expected sample config to load cleanly: exists=%v err=%v", exists, err)
	}
}

func TestLoadValidateSectionSetsChecks(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "yoloprep.toml")
	body := "[validate]\nabort_on_out_of_range = false\nabort_on_one_based = true\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Checks.AbortOnOutOfRange || !cfg.Checks.AbortOnOneBased {
		t.Fatalf("unexpected checks section: %+v", cfg.Checks)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}
