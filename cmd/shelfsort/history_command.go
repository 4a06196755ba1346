package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shelfsort/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs, or the decisions of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("history journal is disabled; enable [history] in the configuration")
			}

			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return printDecisions(cmd, store, args[0])
			}
			return printRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func printRuns(cmd *cobra.Command, store *history.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt,
			yesNo(run.DryRun),
			strconv.Itoa(run.Scanned),
			strconv.Itoa(run.Processed),
			strconv.Itoa(run.Skipped),
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Run", "Started", "Dry run", "Scanned", "Organized", "Skipped"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}))
	return nil
}

func printDecisions(cmd *cobra.Command, store *history.Store, runID string) error {
	decisions, err := store.ListDecisions(cmd.Context(), runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(decisions) == 0 {
		fmt.Fprintf(out, "No decisions recorded for run %s\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(decisions))
	for _, decision := range decisions {
		detail := decision.TargetDir
		if decision.Reason != "" {
			detail = decision.Reason
		}
		rows = append(rows, []string{decision.RelPath, decision.Status, decision.Confidence, detail})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Folder", "Status", "Confidence", "Detail"},
		rows, nil))
	return nil
}
