package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Rewrite label files into canonical YOLO form",
	}

	convertCmd.AddCommand(newConvertNamesCommand(ctx))
	convertCmd.AddCommand(newConvertCoordsCommand(ctx))
	convertCmd.AddCommand(newConvertShiftCommand(ctx))

	return convertCmd
}

func newConvertNamesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "names [dir]",
		Short: "Replace species names with catalog class ids",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := ctx.pipeline(false)
			if err != nil {
				return err
			}
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			stats, err := p.ConvertNames(cmd.Context(), dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted %d files (%d lines mapped, %d unknown names dropped, %d files already numeric)\n",
				stats.Files, stats.LinesMapped, stats.UnknownNames, stats.Skipped)
			return nil
		},
	}
}

func newConvertCoordsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "coords",
		Short: "Normalize pixel corner boxes using each image's size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := ctx.pipeline(false)
			if err != nil {
				return err
			}
			stats, err := p.ConvertCoords(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rewrote %d files (%d boxes converted, %d already normalized, %d files without image)\n",
				stats.Files, stats.Converted, stats.PassedThrough, stats.MissingImages)
			return nil
		},
	}
}

func newConvertShiftCommand(ctx *commandContext) *cobra.Command {
	var offset int
	var force bool

	cmd := &cobra.Command{
		Use:   "shift",
		Short: "Subtract an offset from every class id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("offset") {
				offset = cfg.Remap.Offset
			}
			p, _, err := ctx.pipeline(false)
			if err != nil {
				return err
			}
			stats, err := p.ConvertShift(cmd.Context(), offset, force)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Shifted %d lines in %d files by %d\n", stats.Lines, stats.Files, offset)
			if stats.HasIDs {
				fmt.Fprintf(out, "Id range before shift: %d..%d\n", stats.MinID, stats.MaxID)
			}
			if stats.Skipped > 0 {
				fmt.Fprintf(out, "Skipped %d files with non-numeric classes\n", stats.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 1, "Value subtracted from every class id (default remap.offset)")
	cmd.Flags().BoolVar(&force, "force", false, "Shift even when ids already look 0-based")
	return cmd
}
