package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"yoloprep/internal/catalog"
	"yoloprep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test and
// writes the built-in class catalog to the configured catalog path.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DatasetRoot = filepath.Join(base, "yolo_dataset")
	cfgVal.Paths.OutputRoot = filepath.Join(base, "yolo_dataset_balanced")
	cfgVal.Paths.AuditDir = filepath.Join(base, "label_checks")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.CatalogFile = filepath.Join(base, "animals.yaml")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if _, err := os.Stat(builder.cfg.Paths.CatalogFile); os.IsNotExist(err) {
		if err := os.WriteFile(builder.cfg.Paths.CatalogFile, catalog.DefaultDocument(), 0o644); err != nil {
			t.Fatalf("write catalog: %v", err)
		}
	}
	return builder.cfg
}

// WithCatalog writes a custom catalog document instead of the built-in one.
func WithCatalog(document string) ConfigOption {
	return func(b *configBuilder) {
		if err := os.WriteFile(b.cfg.Paths.CatalogFile, []byte(document), 0o644); err != nil {
			b.t.Fatalf("write catalog: %v", err)
		}
	}
}

// WithSplit overrides the splitter ratios and seed.
func WithSplit(valRatio, testRatio float64, seed uint64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Split.ValRatio = valRatio
		b.cfg.Split.TestRatio = testRatio
		b.cfg.Split.Seed = seed
	}
}

// WithAudit toggles audit rendering.
func WithAudit(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audit.Enabled = enabled
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DatasetRoot)
}
