package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sermonbench/internal/scenario"
)

func newScenariosCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List available stress scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			scenarios := scenario.All(cfg)
			rows := make([][]string, 0, len(scenarios))
			for _, s := range scenarios {
				flags := ""
				if s.SimulateInterruptions {
					flags = "interruptions"
				}
				rows = append(rows, []string{
					s.Name,
					s.Pattern,
					fmt.Sprintf("%d", s.FileCount),
					fmt.Sprintf("%d", s.MaxConcurrency),
					s.Duration.String(),
					s.SizePreference,
					flags,
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Pattern", "Files", "Concurrency", "Budget", "Sizes", "Extras"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
