// Package config loads, normalizes, and validates yoloprep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// pipeline and CLI need: dataset and output roots, split ratios and seed, the
// class catalog location, remap offsets, validation strictness, audit
// rendering, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, lower-cased image extensions, and clear validation errors.
package config
