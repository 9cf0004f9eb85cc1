package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sermonbench/internal/progress"
)

func newNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test message to the Discord webhook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.TrimSpace(cfg.Notifications.DiscordWebhook) == "" {
				fmt.Fprintln(out, "No Discord webhook configured; nothing to send")
				return nil
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			messenger := progress.NewMessenger(cfg.Notifications, logger)
			embed := progress.Embed{
				Title: "✅ sermonbench webhook test",
				Color: 0x00ff00,
				Fields: []progress.Field{
					{Name: "📊 Status", Value: "Webhook delivery is working", Inline: true},
				},
				Footer:    "sermonbench",
				Timestamp: time.Now(),
			}

			id, err := messenger.Create(cmd.Context(), embed)
			if err != nil {
				return fmt.Errorf("send test message: %w", err)
			}
			fmt.Fprintf(out, "Test message sent (message ID %s)\n", id)
			return nil
		},
	}
}
