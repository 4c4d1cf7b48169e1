package preflight

import (
	"fmt"
	"strings"

	"yoloprep/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks needed before a full pipeline run.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Dataset root", cfg.Paths.DatasetRoot),
		CheckLabelsTree("Label directories", cfg.Paths.DatasetRoot),
		CheckCatalog("Class catalog", cfg.Paths.CatalogFile),
		CheckCreatableDirectory("Output root", cfg.Paths.OutputRoot),
		CheckCreatableDirectory("State directory", cfg.Paths.StateDir),
	}
	if cfg.Audit.Enabled {
		results = append(results, CheckCreatableDirectory("Audit directory", cfg.Paths.AuditDir))
	}
	return results
}

// Err summarizes failed results, or returns nil when every check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(failed, "; "))
}
