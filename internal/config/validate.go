package config

import (
	"errors"
	"fmt"
	"regexp"
)

var hexColorPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{6}|[0-9a-fA-F]{3})$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSplit(); err != nil {
		return err
	}
	if err := c.validateRemap(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DatasetRoot == "" {
		return errors.New("paths.dataset_root must be set")
	}
	if c.Paths.OutputRoot == "" {
		return errors.New("paths.output_root must be set")
	}
	if c.Paths.DatasetRoot == c.Paths.OutputRoot {
		return errors.New("paths.output_root must differ from paths.dataset_root")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.CatalogFile == "" {
		return errors.New("paths.catalog_file must be set")
	}
	return nil
}

func (c *Config) validateSplit() error {
	if c.Split.ValRatio < 0 || c.Split.ValRatio >= 1 {
		return errors.New("split.val_ratio must be between 0 and 1")
	}
	if c.Split.TestRatio < 0 || c.Split.TestRatio >= 1 {
		return errors.New("split.test_ratio must be between 0 and 1")
	}
	if c.Split.ValRatio+c.Split.TestRatio >= 1 {
		return errors.New("split.val_ratio + split.test_ratio must be less than 1")
	}
	return nil
}

func (c *Config) validateRemap() error {
	if c.Remap.Offset < 0 {
		return errors.New("remap.offset must be >= 0")
	}
	for name, id := range c.Remap.Names {
		if id < 0 {
			return fmt.Errorf("remap.names.%q must map to a non-negative id", name)
		}
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.SampleSize < 0 {
		return errors.New("audit.sample_size must be >= 0")
	}
	if !hexColorPattern.MatchString(c.Audit.Color) {
		return fmt.Errorf("audit.color must be a hex color, got %q", c.Audit.Color)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
