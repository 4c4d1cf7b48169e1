package workflow

import (
	"context"

	"github.com/google/uuid"

	"yoloprep/internal/catalog"
	"yoloprep/internal/index"
	"yoloprep/internal/logging"
	"yoloprep/internal/manifest"
	"yoloprep/internal/materialize"
	"yoloprep/internal/pipeline"
	"yoloprep/internal/split"
)

// RunOptions selects the stages of a chained run.
type RunOptions struct {
	// Command is recorded in the manifest.
	Command string
	// Check runs the validator between index and split.
	Check bool
	// Audit renders the audit sample during the check.
	Audit bool
	// DryRun stops after computing the assignment.
	DryRun bool
}

// RunResult collects the outputs of every executed stage.
type RunResult struct {
	RunID       string
	Index       *index.Index
	Check       *CheckResult
	Assignment  split.Assignment
	Summary     split.Summary
	Materialize *materialize.Result
}

// Run chains index, check, split, and materialize. Runs that write output
// are recorded in the manifest when one is attached.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	result := RunResult{RunID: uuid.NewString()}
	ctx = pipeline.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, p.logger)
	record := p.manifest != nil && !opts.DryRun

	if opts.Command == "" {
		opts.Command = "run"
	}
	if record {
		err := p.manifest.BeginRun(ctx, manifest.Run{
			ID:          result.RunID,
			Command:     opts.Command,
			DatasetRoot: p.cfg.Paths.DatasetRoot,
			OutputRoot:  p.cfg.Paths.OutputRoot,
			Seed:        p.cfg.Split.Seed,
			ValRatio:    p.cfg.Split.ValRatio,
			TestRatio:   p.cfg.Split.TestRatio,
		})
		if err != nil {
			return result, pipeline.Wrap(pipeline.ErrIO, "manifest", "begin run", "Run manifest unavailable", err)
		}
	}

	err := p.runStages(ctx, opts, &result)

	if record {
		p.finishManifest(ctx, &result, err)
	}
	if err != nil {
		return result, err
	}
	logger.Info("run complete",
		logging.String("command", opts.Command),
		logging.Bool("dry_run", opts.DryRun),
	)
	return result, nil
}

func (p *Pipeline) runStages(ctx context.Context, opts RunOptions, result *RunResult) error {
	idx, err := p.Index(ctx)
	if err != nil {
		return err
	}
	result.Index = idx

	if opts.Check {
		check, err := p.Check(ctx, idx, opts.Audit)
		result.Check = &check
		if err != nil {
			return err
		}
	}

	assignment, summary, err := p.Split(ctx, idx)
	if err != nil {
		return err
	}
	result.Assignment = assignment
	result.Summary = summary

	if opts.DryRun {
		return nil
	}
	materialized, err := p.Materialize(ctx, assignment)
	result.Materialize = &materialized
	return err
}

func (p *Pipeline) finishManifest(ctx context.Context, result *RunResult, runErr error) {
	logger := logging.WithContext(ctx, p.logger)
	// Recording must survive a cancelled run context.
	ctx = context.WithoutCancel(ctx)

	if result.Check != nil {
		findings := make([]manifest.Finding, 0, len(result.Check.Report.Findings))
		for _, f := range result.Check.Report.Findings {
			findings = append(findings, manifest.Finding{Code: string(f.Code), Severity: string(f.Severity), Message: f.Message})
		}
		if err := p.manifest.RecordFindings(ctx, result.RunID, findings); err != nil {
			logging.ErrorWithContext(logger, "failed to record findings", "manifest_write", logging.Error(err))
		}
	}
	if result.Materialize != nil && result.Assignment.Len() > 0 {
		refs := result.Assignment.Refs()
		assignments := make([]manifest.Assignment, 0, len(refs))
		for _, ref := range refs {
			target, _ := result.Assignment.Target(ref)
			assignments = append(assignments, manifest.Assignment{SourceSplit: ref.Split, FileName: ref.Name, TargetSplit: target})
		}
		if err := p.manifest.RecordAssignments(ctx, result.RunID, assignments); err != nil {
			logging.ErrorWithContext(logger, "failed to record assignments", "manifest_write", logging.Error(err))
		}
	}

	outcome := manifest.Outcome{
		Train: result.Summary.Train,
		Val:   result.Summary.Val,
		Test:  result.Summary.Test,
		Err:   runErr,
	}
	if result.Index != nil {
		outcome.FilesScanned = result.Index.FilesScanned()
	}
	if err := p.manifest.FinishRun(ctx, result.RunID, outcome); err != nil {
		logging.ErrorWithContext(logger, "failed to finish manifest run", "manifest_write",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "history will show this run as running"),
		)
	}
}

func auditCatalog(labelNames bool, cat *catalog.Catalog) *catalog.Catalog {
	if !labelNames {
		return nil
	}
	return cat
}
