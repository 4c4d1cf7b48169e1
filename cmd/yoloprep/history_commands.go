package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"yoloprep/internal/manifest"
	"yoloprep/internal/pipeline"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded split runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openManifest()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return pipeline.Wrap(pipeline.ErrIO, "history", "list runs", "Run manifest could not be read", err)
			}
			if jsonOutput {
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			color := shouldColorize(out)
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					run.Command,
					statusLabel(color, run.Status),
					run.StartedAt.Local().Format(time.DateTime),
					strconv.Itoa(run.FilesScanned),
					fmt.Sprintf("%d/%d/%d", run.Train, run.Val, run.Test),
					strconv.FormatUint(run.Seed, 10),
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "Run"},
				{header: "Command"},
				{header: "Status"},
				{header: "Started"},
				{header: "Files", numeric: true},
				{header: "Train/Val/Test", numeric: true},
				{header: "Seed", numeric: true},
			}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.AddCommand(newHistoryShowCommand(ctx))
	return cmd
}

type runDetail struct {
	Run         manifest.Run          `json:"run"`
	Findings    []manifest.Finding    `json:"findings"`
	Assignments []manifest.Assignment `json:"assignments,omitempty"`
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var withAssignments bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openManifest()
			if err != nil {
				return err
			}
			defer store.Close()

			id := strings.TrimSpace(args[0])
			run, err := store.GetRun(cmd.Context(), id)
			if errors.Is(err, manifest.ErrRunNotFound) {
				return pipeline.Wrap(pipeline.ErrNotFound, "history", "show", fmt.Sprintf("No run with id %s", id), err)
			}
			if err != nil {
				return pipeline.Wrap(pipeline.ErrIO, "history", "show", "Run manifest could not be read", err)
			}
			detail := runDetail{Run: run}
			if detail.Findings, err = store.Findings(cmd.Context(), id); err != nil {
				return pipeline.Wrap(pipeline.ErrIO, "history", "show", "Run findings could not be read", err)
			}
			assignments, err := store.Assignments(cmd.Context(), id)
			if err != nil {
				return pipeline.Wrap(pipeline.ErrIO, "history", "show", "Run assignments could not be read", err)
			}
			if withAssignments {
				detail.Assignments = assignments
			}
			if jsonOutput {
				return writeJSON(cmd, detail)
			}

			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			fmt.Fprintf(out, "Run:       %s\n", run.ID)
			fmt.Fprintf(out, "Command:   %s\n", run.Command)
			fmt.Fprintf(out, "Status:    %s\n", statusLabel(color, run.Status))
			fmt.Fprintf(out, "Dataset:   %s\n", run.DatasetRoot)
			if run.OutputRoot != "" {
				fmt.Fprintf(out, "Output:    %s\n", run.OutputRoot)
			}
			fmt.Fprintf(out, "Seed:      %d (val %.2f, test %.2f)\n", run.Seed, run.ValRatio, run.TestRatio)
			fmt.Fprintf(out, "Files:     %d scanned, train %d, val %d, test %d\n", run.FilesScanned, run.Train, run.Val, run.Test)
			fmt.Fprintf(out, "Recorded:  %d assignments\n", len(assignments))
			fmt.Fprintf(out, "Finished:  %s\n", yesNo(run.FinishedAt != nil))
			if run.Error != "" {
				fmt.Fprintf(out, "Error:     %s\n", run.Error)
			}
			for _, f := range detail.Findings {
				fmt.Fprintf(out, "Finding:   [%s] %s: %s\n", f.Severity, f.Code, f.Message)
			}
			if withAssignments {
				rows := make([][]string, 0, len(assignments))
				for _, a := range assignments {
					rows = append(rows, []string{a.SourceSplit, a.FileName, a.TargetSplit})
				}
				fmt.Fprintln(out, renderTable([]column{{header: "Source"}, {header: "File"}, {header: "Target"}}, rows))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&withAssignments, "assignments", false, "Include every file assignment")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusLabel(color bool, status string) string {
	switch status {
	case manifest.StatusSucceeded:
		return colorize(color, ansiGreen, status)
	case manifest.StatusFailed:
		return colorize(color, ansiRed, status)
	default:
		return colorize(color, ansiYellow, status)
	}
}
