package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelfsort/internal/preflight"
	"shelfsort/internal/tracker"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show preflight checks and tracker summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Preflight", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, result := range results {
				kind := statusError
				if result.Passed {
					kind = statusOK
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			tr, err := tracker.Load(cfg.TrackerPath(), nil)
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Tracker", colorize) {
				fmt.Fprintln(out, line)
			}
			counts := tr.CountByStatus()
			fmt.Fprintln(out, renderStatusLine("Tracked folders", statusInfo, fmt.Sprintf("%d", tr.Len()), colorize))
			fmt.Fprintln(out, renderStatusLine("Processed", statusInfo, fmt.Sprintf("%d", counts[tracker.StatusProcessed]), colorize))
			fmt.Fprintln(out, renderStatusLine("Skipped", statusInfo, fmt.Sprintf("%d", counts[tracker.StatusSkipped]), colorize))

			if !preflight.AllPassed(results) {
				return fmt.Errorf("one or more preflight checks failed")
			}
			return nil
		},
	}
}
