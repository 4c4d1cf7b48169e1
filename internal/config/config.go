package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains dataset and state directory configuration.
type Paths struct {
	DatasetRoot string `toml:"dataset_root"`
	OutputRoot  string `toml:"output_root"`
	AuditDir    string `toml:"audit_dir"`
	StateDir    string `toml:"state_dir"`
	CatalogFile string `toml:"catalog_file"`
}

// Split contains the balanced splitter ratios and seed.
type Split struct {
	ValRatio  float64 `toml:"val_ratio"`
	TestRatio float64 `toml:"test_ratio"`
	Seed      uint64  `toml:"seed"`
}

// Remap contains configuration for the class index remapping passes.
type Remap struct {
	// Offset is subtracted from every numeric class id by the shift pass.
	Offset int `toml:"offset"`
	// Names overrides the catalog-derived species table used by the name pass.
	Names map[string]int `toml:"names"`
}

// Checks controls which consistency findings abort the pipeline.
type Checks struct {
	AbortOnOutOfRange bool `toml:"abort_on_out_of_range"`
	AbortOnOneBased   bool `toml:"abort_on_one_based"`
}

// Audit contains configuration for ground-truth visualizations.
type Audit struct {
	Enabled    bool   `toml:"enabled"`
	SampleSize int    `toml:"sample_size"`
	Color      string `toml:"color"`
	LineWidth  int    `toml:"line_width"`
	LabelNames bool   `toml:"label_names"`
}

// Materialize contains configuration for writing the balanced dataset.
type Materialize struct {
	ImageExtensions []string `toml:"image_extensions"`
	VerifyCopies    bool     `toml:"verify_copies"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for yoloprep.
//
// Configuration sections by subsystem:
//   - Paths: source dataset, balanced output, audit output, state, catalog
//   - Split: val/test ratios and shuffle seed
//   - Remap: id shift offset and optional species name table
//   - Checks: which consistency findings are blocking
//   - Audit: sample size and drawing style for ground-truth renders
//   - Materialize: image extension probe order and verified copies
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Split       Split       `toml:"split"`
	Remap       Remap       `toml:"remap"`
	Checks      Checks      `toml:"validate"`
	Audit       Audit       `toml:"audit"`
	Materialize Materialize `toml:"materialize"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/yoloprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("yoloprep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory used for the manifest,
// lock files, and the log file.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// ManifestPath returns the location of the run manifest database.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.StateDir, "manifest.db")
}

// LogPath returns the location of the persistent log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.StateDir, "yoloprep.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
