package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"yoloprep/internal/validate"
	"yoloprep/internal/workflow"
)

type checkView struct {
	Report validate.Report       `json:"report"`
	Audit  *validate.AuditResult `json:"audit,omitempty"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var audit bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate class ids against the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := ctx.pipeline(false)
			if err != nil {
				return err
			}
			idx, err := p.Index(cmd.Context())
			if err != nil {
				return err
			}
			result, checkErr := p.Check(cmd.Context(), idx, audit)
			if jsonOutput {
				if err := writeJSON(cmd, checkView{Report: result.Report, Audit: result.Audit}); err != nil {
					return err
				}
				return checkErr
			}
			printCheck(cmd.OutOrStdout(), result)
			return checkErr
		},
	}

	cmd.Flags().BoolVar(&audit, "audit", false, "Render ground-truth boxes for a sample of images")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printCheck(out io.Writer, result workflow.CheckResult) {
	report := result.Report
	color := shouldColorize(out)

	fmt.Fprintf(out, "Scanned %d label files, catalog declares %d classes\n", report.FilesScanned, report.NC)
	if report.MinID != nil && report.MaxID != nil {
		fmt.Fprintf(out, "Class ids span %d..%d\n", *report.MinID, *report.MaxID)
	}
	if len(report.Findings) == 0 {
		fmt.Fprintln(out, colorize(color, ansiGreen, "No findings"))
	} else {
		rows := make([][]string, 0, len(report.Findings))
		for _, f := range report.Findings {
			rows = append(rows, []string{severityLabel(color, f.Severity), string(f.Code), f.Message})
		}
		fmt.Fprintln(out, renderTable([]column{{header: "Severity"}, {header: "Code"}, {header: "Message"}}, rows))
	}
	if result.Audit != nil {
		fmt.Fprintf(out, "Audit: %d images rendered, %d skipped\n", len(result.Audit.Rendered), result.Audit.Skipped)
	}
}

func severityLabel(color bool, severity validate.Severity) string {
	switch severity {
	case validate.SeverityError:
		return colorize(color, ansiRed, string(severity))
	case validate.SeverityWarning:
		return colorize(color, ansiYellow, string(severity))
	default:
		return string(severity)
	}
}
