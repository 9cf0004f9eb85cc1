package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sermonbench/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs from the history database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					r.Scenario,
					r.Pattern,
					fmt.Sprintf("%d/%d", r.Successful, r.TotalFiles),
					fmt.Sprintf("%.1f%%", r.SuccessRate),
					fmt.Sprintf("%.2f", r.AvgThroughputMBps),
					fmt.Sprintf("%.1fs", r.P95Duration.Seconds()),
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Scenario", "Pattern", "OK/Total", "Success", "Avg MB/s", "p95"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}
