package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"yoloprep/internal/materialize"
	"yoloprep/internal/pipeline"
	"yoloprep/internal/preflight"
	"yoloprep/internal/split"
	"yoloprep/internal/workflow"
)

type splitView struct {
	RunID       string              `json:"run_id"`
	DryRun      bool                `json:"dry_run"`
	Summary     split.Summary       `json:"summary"`
	Materialize *materialize.Result `json:"materialize,omitempty"`
}

func newSplitCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Write a class-balanced train/val/test copy of the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, workflow.RunOptions{Command: "split", Check: true, DryRun: dryRun}, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the assignment without writing files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var skipPreflight bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Index, check, split, and materialize in one pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !skipPreflight {
				results := preflight.RunAll(cfg)
				if err := preflight.Err(results); err != nil {
					if !jsonOutput {
						printPreflight(cmd.OutOrStdout(), results)
					}
					return pipeline.Wrap(pipeline.ErrConfiguration, "preflight", "checks", "Environment is not ready", err)
				}
			}
			opts := workflow.RunOptions{
				Command: "run",
				Check:   true,
				Audit:   cfg.Audit.Enabled,
				DryRun:  dryRun,
			}
			return runPipeline(cmd, ctx, opts, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Stop after computing the assignment")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, opts workflow.RunOptions, jsonOutput bool) error {
	p, store, err := ctx.pipeline(!opts.DryRun)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	result, runErr := p.Run(cmd.Context(), opts)
	out := cmd.OutOrStdout()
	if jsonOutput {
		if err := writeJSON(cmd, splitView{
			RunID:       result.RunID,
			DryRun:      opts.DryRun,
			Summary:     result.Summary,
			Materialize: result.Materialize,
		}); err != nil {
			return err
		}
		return runErr
	}
	if result.Check != nil && runErr != nil {
		printCheck(out, *result.Check)
	}
	if runErr != nil {
		return runErr
	}
	printSplit(out, result, opts.DryRun)
	return nil
}

func printSplit(out io.Writer, result workflow.RunResult, dryRun bool) {
	rows := make([][]string, 0, len(result.Summary.Classes))
	for _, cs := range result.Summary.Classes {
		drift := ""
		if cs.Drifted() {
			drift = "*"
		}
		rows = append(rows, []string{
			strconv.Itoa(cs.Class),
			strconv.Itoa(cs.Files),
			strconv.Itoa(cs.Train),
			strconv.Itoa(cs.Val),
			strconv.Itoa(cs.Test),
			drift,
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable([]column{
			{header: "Class", numeric: true},
			{header: "Files", numeric: true},
			{header: "Train", numeric: true},
			{header: "Val", numeric: true},
			{header: "Test", numeric: true},
			{header: "Drift"},
		}, rows))
	}
	fmt.Fprintf(out, "Assigned train %d, val %d, test %d\n", result.Summary.Train, result.Summary.Val, result.Summary.Test)
	if dryRun {
		fmt.Fprintln(out, "Dry run: no files written")
		return
	}
	if m := result.Materialize; m != nil {
		fmt.Fprintf(out, "Copied %d labels and %d images", m.Labels, m.Images)
		if len(m.MissingImages) > 0 {
			fmt.Fprintf(out, " (%d images missing)", len(m.MissingImages))
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Run %s recorded\n", result.RunID)
}

func printPreflight(out io.Writer, results []preflight.Result) {
	color := shouldColorize(out)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := colorize(color, ansiGreen, "ok")
		if !r.Passed {
			status = colorize(color, ansiRed, "fail")
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	fmt.Fprintln(out, renderTable([]column{{header: "Check"}, {header: "Status"}, {header: "Detail"}}, rows))
}
