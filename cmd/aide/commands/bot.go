// ABOUTME: Bot command runs the Telegram channel
// ABOUTME: Long-polls the Bot API and routes messages to the agent
package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/aide/internal/channels/telegram"
)

// NewBotCmd creates the bot command
func NewBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot channel",
		Long: `Run the Telegram bot channel.

The bot links each chat to an account with /start your@email.com, then
routes messages to the assistant. Set TELEGRAM_BOT_TOKEN first.

Examples:
  aide bot`,
		RunE: runBot,
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	orch, err := a.requireAgent()
	if err != nil {
		return err
	}
	if a.cfg.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}

	bot := telegram.NewBot(a.cfg.TelegramToken, orch, a.briefs, a.auth, a.links)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("telegram bot: %w", err)
	}
	return nil
}
