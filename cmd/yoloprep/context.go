package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"yoloprep/internal/config"
	"yoloprep/internal/logging"
	"yoloprep/internal/manifest"
	"yoloprep/internal/pipeline"
	"yoloprep/internal/workflow"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = pipeline.Wrap(pipeline.ErrConfiguration, "config", "load", "Configuration is invalid", err)
			return
		}
		if level := flagValue(c.logLevelFlag); level != "" {
			cfg.Logging.Level = level
		}
		if format := flagValue(c.logFormatFlag); format != "" {
			cfg.Logging.Format = format
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = pipeline.Wrap(pipeline.ErrConfiguration, "config", "ensure directories", "State directory unavailable", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = pipeline.Wrap(pipeline.ErrConfiguration, "logging", "init", "Logger could not be created", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

// pipeline builds a workflow pipeline for the loaded configuration. When
// withManifest is set the caller must close the returned store.
func (c *commandContext) pipeline(withManifest bool) (*workflow.Pipeline, *manifest.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	opts := []workflow.Option{workflow.WithLogger(logger)}
	var store *manifest.Store
	if withManifest {
		store, err = c.openManifest()
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, workflow.WithManifest(store))
	}
	return workflow.New(cfg, opts...), store, nil
}

func (c *commandContext) openManifest() (*manifest.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := manifest.Open(cfg.ManifestPath())
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrIO, "manifest", "open",
			fmt.Sprintf("Run manifest %s unavailable", cfg.ManifestPath()), err)
	}
	return store, nil
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
