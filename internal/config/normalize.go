package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRemap()
	c.normalizeAudit()
	c.normalizeMaterialize()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		key   string
		value *string
	}{
		{"paths.dataset_root", &c.Paths.DatasetRoot},
		{"paths.output_root", &c.Paths.OutputRoot},
		{"paths.audit_dir", &c.Paths.AuditDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.catalog_file", &c.Paths.CatalogFile},
	}
	for _, field := range fields {
		trimmed := strings.TrimSpace(*field.value)
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", field.key, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeRemap() {
	if len(c.Remap.Names) == 0 {
		c.Remap.Names = nil
		return
	}
	cleaned := make(map[string]int, len(c.Remap.Names))
	for name, id := range c.Remap.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cleaned[name] = id
	}
	c.Remap.Names = cleaned
}

func (c *Config) normalizeAudit() {
	c.Audit.Color = strings.TrimSpace(c.Audit.Color)
	if c.Audit.Color == "" {
		c.Audit.Color = defaultAuditColor
	}
	if c.Audit.LineWidth <= 0 {
		c.Audit.LineWidth = defaultAuditLineWidth
	}
}

func (c *Config) normalizeMaterialize() {
	exts := make([]string, 0, len(c.Materialize.ImageExtensions))
	seen := make(map[string]struct{}, len(c.Materialize.ImageExtensions))
	for _, ext := range c.Materialize.ImageExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultImageExtensions...)
	}
	c.Materialize.ImageExtensions = exts
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
