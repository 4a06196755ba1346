package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"shelfsort/internal/scanner"
	"shelfsort/internal/tracker"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List audio-bearing folders under the input directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			records, err := scanner.Scan(cfg.Paths.InputDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintf(out, "No audio folders found under %s\n", cfg.Paths.InputDir)
				return nil
			}

			tr, err := tracker.Load(cfg.TrackerPath(), nil)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				status := "-"
				if entry, ok := tr.Get(record.RelPath); ok {
					status = string(entry.Status)
				}
				rows = append(rows, []string{
					record.RelPath,
					strconv.Itoa(len(record.AudioFiles)),
					status,
					yesNo(record.ForceMarker),
					yesNo(record.Hint != ""),
				})
			}

			fmt.Fprintln(out, renderTable(out,
				[]string{"Folder", "Audio", "Status", "Force", "Hint"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}
}
