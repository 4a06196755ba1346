package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelfsort/internal/logging"
	"shelfsort/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan the input directory and organize audiobook folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			p, err := pipeline.New(cfg, logger, dryRun)
			if err != nil {
				return err
			}
			defer p.Close()

			summary, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary.DryRun {
				fmt.Fprintln(out, "Dry run: nothing was written.")
			}
			fmt.Fprintf(out, "Scanned %d folder(s): %d organized, %d skipped, %d already done\n",
				summary.Scanned, summary.Processed, summary.Skipped, summary.AlreadyDone)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Log intended actions without touching files or the tracker")
	return cmd
}
