package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelfsort/internal/tracker"
)

func newTrackerCommand(ctx *commandContext) *cobra.Command {
	trackerCmd := &cobra.Command{
		Use:   "tracker",
		Short: "Inspect or reset the processing tracker",
	}

	trackerCmd.AddCommand(newTrackerListCommand(ctx))
	trackerCmd.AddCommand(newTrackerClearCommand(ctx))

	return trackerCmd
}

func newTrackerListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked folders and their recorded decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			tr, err := tracker.Load(cfg.TrackerPath(), nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if tr.Len() == 0 {
				fmt.Fprintln(out, "Tracker is empty")
				return nil
			}

			rows := make([][]string, 0, tr.Len())
			for _, relPath := range tr.Paths() {
				entry, _ := tr.Get(relPath)
				detail := ""
				if reason, ok := entry.Extra["reason"].(string); ok {
					detail = reason
				} else if outputPath, ok := entry.Extra["output_path"].(string); ok {
					detail = outputPath
				}
				rows = append(rows, []string{relPath, string(entry.Status), entry.Timestamp, detail})
			}

			fmt.Fprintln(out, renderTable(out,
				[]string{"Folder", "Status", "Timestamp", "Detail"},
				rows, nil))
			return nil
		},
	}
}

func newTrackerClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every tracker entry so all folders are re-evaluated",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("clearing the tracker reprocesses every folder on the next run; pass --yes to confirm")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			tr, err := tracker.Load(cfg.TrackerPath(), nil)
			if err != nil {
				return err
			}

			removed, err := tr.Clear()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d tracker entr%s\n", removed, pluralY(removed))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm clearing the tracker")
	return cmd
}

func pluralY(count int) string {
	if count == 1 {
		return "y"
	}
	return "ies"
}
