package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"yoloprep/internal/index"
	"yoloprep/internal/logging"
	"yoloprep/internal/materialize"
	"yoloprep/internal/pipeline"
	"yoloprep/internal/split"
	"yoloprep/internal/stageexec"
	"yoloprep/internal/validate"
)

// Index scans every split of the dataset.
func (p *Pipeline) Index(ctx context.Context) (*index.Index, error) {
	var idx *index.Index
	err := stageexec.Run(ctx, stageexec.Options{Logger: p.logger, StageName: "index"}, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		idx, err = index.Build(ctx, p.store, logger)
		if err != nil {
			return pipeline.Wrap(pipeline.ErrIO, "index", "scan splits",
				fmt.Sprintf("Scanning %s failed", p.store.Layout().LabelsDir()), err)
		}
		if idx.FilesScanned() == 0 {
			logging.WarnWithContext(logger, "no label files found", "index_empty",
				logging.String("labels_dir", p.store.Layout().LabelsDir()),
				logging.String(logging.FieldImpact, "later stages have nothing to split"),
				logging.String(logging.FieldErrorHint, "check paths.dataset_root"),
			)
		}
		return nil
	})
	return idx, err
}

// CheckResult bundles the consistency report and the optional audit output.
type CheckResult struct {
	Report validate.Report
	Audit  *validate.AuditResult
}

// Check validates the index against the catalog and optionally renders the
// audit sample. The result is returned even when blocking findings produce
// an error.
func (p *Pipeline) Check(ctx context.Context, idx *index.Index, audit bool) (CheckResult, error) {
	var result CheckResult
	err := stageexec.Run(ctx, stageexec.Options{Logger: p.logger, StageName: "check"}, func(ctx context.Context, logger *slog.Logger) error {
		cat, err := p.Catalog()
		if err != nil {
			return err
		}
		result.Report = validate.Check(idx, cat)
		for _, finding := range result.Report.Findings {
			attrs := []logging.Attr{
				logging.String("code", string(finding.Code)),
				logging.String("detail", finding.Message),
			}
			switch finding.Severity {
			case validate.SeverityInfo:
				logger.Info("consistency finding", logging.Args(attrs...)...)
			default:
				attrs = append(attrs,
					logging.String(logging.FieldImpact, "training would see wrong or missing classes"),
					logging.String(logging.FieldErrorHint, "run yoloprep convert shift or fix the catalog"),
				)
				logging.WarnWithContext(logger, "consistency finding", "check_"+string(finding.Code), attrs...)
			}
		}

		if audit {
			rendered, err := validate.RenderAudit(ctx, p.store, p.cfg.Paths.AuditDir, validate.AuditOptions{
				SampleSize: p.cfg.Audit.SampleSize,
				Color:      p.cfg.Audit.Color,
				LineWidth:  float64(p.cfg.Audit.LineWidth),
				Catalog:    auditCatalog(p.cfg.Audit.LabelNames, cat),
				Logger:     logger,
			})
			switch {
			case errors.Is(err, context.Canceled):
				return err
			case err != nil:
				logging.WarnWithContext(logger, "audit rendering failed", "audit_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "no visual audit for this run"),
				)
			default:
				result.Audit = &rendered
				logger.Info("audit images written",
					logging.String("audit_dir", p.cfg.Paths.AuditDir),
					logging.Int("images", len(rendered.Rendered)),
				)
			}
		}

		if err := result.Report.Err(p.validateOptions()); err != nil {
			return pipeline.Wrap(pipeline.ErrValidation, "check", "id range",
				"Class ids do not match the catalog; fix the labels before splitting", err)
		}
		return nil
	})
	return result, err
}

// Split computes a fresh assignment from the index.
func (p *Pipeline) Split(ctx context.Context, idx *index.Index) (split.Assignment, split.Summary, error) {
	var (
		assignment split.Assignment
		summary    split.Summary
	)
	err := stageexec.Run(ctx, stageexec.Options{Logger: p.logger, StageName: "split"}, func(ctx context.Context, logger *slog.Logger) error {
		opts := p.splitOptions()
		if err := opts.Validate(); err != nil {
			return pipeline.Wrap(pipeline.ErrConfiguration, "split", "options", "Split ratios are invalid", err)
		}
		assignment, summary = split.Assign(idx, opts)
		for _, cs := range summary.Classes {
			if cs.Drifted() {
				logger.Debug("class ratio drifted through shared files",
					logging.Int(logging.FieldClassID, cs.Class),
					logging.Int("files", cs.Files),
					logging.Int("planned_val", cs.PlannedVal),
					logging.Int("val", cs.Val),
					logging.Int("planned_test", cs.PlannedTest),
					logging.Int("test", cs.Test),
				)
			}
		}
		logger.Info("split assigned",
			logging.Int("train", summary.Train),
			logging.Int("val", summary.Val),
			logging.Int("test", summary.Test),
			logging.Any("seed", opts.Seed),
		)
		return nil
	})
	return assignment, summary, err
}

// Materialize writes the assignment to the output root.
func (p *Pipeline) Materialize(ctx context.Context, assignment split.Assignment) (materialize.Result, error) {
	var result materialize.Result
	err := stageexec.Run(ctx, stageexec.Options{Logger: p.logger, StageName: "materialize"}, func(ctx context.Context, logger *slog.Logger) error {
		var err error
		result, err = materialize.Run(ctx, p.store, assignment, materialize.Options{
			OutputRoot:   p.cfg.Paths.OutputRoot,
			VerifyCopies: p.cfg.Materialize.VerifyCopies,
			Logger:       logger,
		})
		if errors.Is(err, materialize.ErrLocked) {
			return pipeline.Wrap(pipeline.ErrConfiguration, "materialize", "lock output",
				"Another yoloprep run is writing the output root", err)
		}
		if err != nil {
			return pipeline.Wrap(pipeline.ErrIO, "materialize", "copy files",
				fmt.Sprintf("Writing %s failed", p.cfg.Paths.OutputRoot), err)
		}
		return nil
	})
	return result, err
}
