package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"yoloprep/internal/catalog"
	"yoloprep/internal/index"
	"yoloprep/internal/labels"
)

type classRow struct {
	ID    int    `json:"id"`
	Name  string `json:"name,omitempty"`
	Files int    `json:"files"`
	Boxes int    `json:"boxes"`
}

type indexView struct {
	NC           int            `json:"nc,omitempty"`
	FilesScanned int            `json:"files_scanned"`
	Unlabeled    int            `json:"unlabeled"`
	DroppedLines int            `json:"dropped_lines"`
	MinID        *int           `json:"min_id,omitempty"`
	MaxID        *int           `json:"max_id,omitempty"`
	PerSplit     map[string]int `json:"per_split"`
	Classes      []classRow     `json:"classes"`
}

func newIndexView(idx *index.Index, cat *catalog.Catalog) indexView {
	view := indexView{
		FilesScanned: idx.FilesScanned(),
		Unlabeled:    idx.Unlabeled(),
		DroppedLines: idx.DroppedLines(),
		PerSplit:     map[string]int{},
		Classes:      []classRow{},
	}
	if cat != nil {
		view.NC = cat.NC()
	}
	if minID, maxID, ok := idx.IDRange(); ok {
		view.MinID = &minID
		view.MaxID = &maxID
	}
	for _, split := range labels.Splits() {
		view.PerSplit[split] = idx.SplitFiles(split)
	}
	for _, class := range idx.Classes() {
		row := classRow{ID: class, Files: idx.FileCount(class), Boxes: idx.BoxCount(class)}
		if cat != nil {
			row.Name, _ = cat.Name(class)
		}
		view.Classes = append(view.Classes, row)
	}
	return view
}

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Show per-class file and box counts",
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
			// Names are decoration here; a broken catalog is reported by check.
			cat, _ := p.Catalog()
			view := newIndexView(idx, cat)
			if jsonOutput {
				return writeJSON(cmd, view)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanned %d label files (train %d, val %d, test %d)\n",
				view.FilesScanned, view.PerSplit[labels.SplitTrain], view.PerSplit[labels.SplitVal], view.PerSplit[labels.SplitTest])
			if view.NC > 0 {
				fmt.Fprintf(out, "Catalog declares %d classes", view.NC)
				if view.MinID != nil {
					fmt.Fprintf(out, ", observed ids %d..%d", *view.MinID, *view.MaxID)
				}
				fmt.Fprintln(out)
			}
			if view.Unlabeled > 0 || view.DroppedLines > 0 {
				fmt.Fprintf(out, "%d files without boxes, %d malformed lines ignored\n", view.Unlabeled, view.DroppedLines)
			}
			if len(view.Classes) == 0 {
				fmt.Fprintln(out, "No classes found")
				return nil
			}
			rows := make([][]string, 0, len(view.Classes))
			for _, row := range view.Classes {
				rows = append(rows, []string{
					strconv.Itoa(row.ID),
					row.Name,
					strconv.Itoa(row.Files),
					strconv.Itoa(row.Boxes),
				})
			}
			fmt.Fprintln(out, renderTable([]column{
				{header: "Class", numeric: true},
				{header: "Name"},
				{header: "Files", numeric: true},
				{header: "Boxes", numeric: true},
			}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
