package config

const (
	defaultDatasetRoot     = "yolo_dataset"
	defaultOutputRoot      = "yolo_dataset_balanced"
	defaultAuditDir        = "label_checks"
	defaultStateDir        = "~/.local/share/yoloprep"
	defaultCatalogFile     = "animals.yaml"
	defaultValRatio        = 0.1
	defaultTestRatio       = 0.1
	defaultSeed            = 42
	defaultRemapOffset     = 1
	defaultAuditSampleSize = 5
	defaultAuditColor      = "#ff0000"
	defaultAuditLineWidth  = 2
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

var defaultImageExtensions = []string{".jpg", ".jpeg", ".png"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DatasetRoot: defaultDatasetRoot,
			OutputRoot:  defaultOutputRoot,
			AuditDir:    defaultAuditDir,
			StateDir:    defaultStateDir,
			CatalogFile: defaultCatalogFile,
		},
		Split: Split{
			ValRatio:  defaultValRatio,
			TestRatio: defaultTestRatio,
			Seed:      defaultSeed,
		},
		Remap: Remap{
			Offset: defaultRemapOffset,
		},
		Checks: Checks{
			AbortOnOutOfRange: true,
			AbortOnOneBased:   false,
		},
		Audit: Audit{
			Enabled:    true,
			SampleSize: defaultAuditSampleSize,
			Color:      defaultAuditColor,
			LineWidth:  defaultAuditLineWidth,
		},
		Materialize: Materialize{
			ImageExtensions: append([]string(nil), defaultImageExtensions...),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
