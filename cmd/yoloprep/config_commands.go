package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"yoloprep/internal/catalog"
	"yoloprep/internal/config"
	"yoloprep/internal/pipeline"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var catalogPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if err := refuseOverwrite(target, overwrite); err != nil {
				return err
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)

			if strings.TrimSpace(catalogPath) != "" {
				catalogTarget, err := config.ExpandPath(catalogPath)
				if err != nil {
					return fmt.Errorf("resolve catalog path: %w", err)
				}
				if err := refuseOverwrite(catalogTarget, overwrite); err != nil {
					return err
				}
				if err := os.MkdirAll(filepath.Dir(catalogTarget), 0o755); err != nil {
					return fmt.Errorf("create catalog directory: %w", err)
				}
				if err := os.WriteFile(catalogTarget, catalog.DefaultDocument(), 0o644); err != nil {
					return fmt.Errorf("write catalog: %w", err)
				}
				fmt.Fprintf(out, "Wrote default class catalog to %s\n", catalogTarget)
			}
			fmt.Fprintln(out, "Edit paths.dataset_root and paths.catalog_file before running yoloprep.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Also write the default class catalog to this path")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files if present")
	return cmd
}

func refuseOverwrite(target string, overwrite bool) error {
	if overwrite {
		return nil
	}
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("%s already exists (use --overwrite to replace it)", target)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("check %s: %w", target, err)
	}
	return nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file and class catalog",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return pipeline.Wrap(pipeline.ErrConfiguration, "config", "validate", "Configuration is invalid", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			cat, err := catalog.Load(afero.NewOsFs(), cfg.Paths.CatalogFile)
			if err != nil {
				return pipeline.Wrap(pipeline.ErrConfiguration, "config", "validate",
					fmt.Sprintf("Class catalog %s is invalid", cfg.Paths.CatalogFile), err)
			}
			if _, err := cat.NameTable(cfg.Remap.Names); err != nil {
				return pipeline.Wrap(pipeline.ErrConfiguration, "config", "validate", "remap.names is invalid", err)
			}
			fmt.Fprintf(out, "Catalog: %s (%d classes)\n", cfg.Paths.CatalogFile, cat.NC())
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
