package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sermonbench/internal/catalog"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the test files available on the recording host",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			client, err := catalog.Connect(cfg.Remote, logger)
			if err != nil {
				return err
			}
			defer client.Close()

			files, err := client.Discover()
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{
					f.Name,
					formatBytes(f.Size),
					string(f.Category),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Size", "Category"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d files, %s\n", len(files), catalog.Distribute(files))
			return nil
		},
	}
}

func formatBytes(size int64) string {
	const unit = 1 << 20
	if size < unit {
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	}
	if size < 1<<30 {
		return fmt.Sprintf("%.1f MB", float64(size)/unit)
	}
	return fmt.Sprintf("%.2f GB", float64(size)/(1<<30))
}
