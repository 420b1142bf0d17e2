// ABOUTME: Root command for the aide CLI with global flags
// ABOUTME: Registers the chat, brief, channel, and data subcommands
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	asUser  string
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aide",
		Short: "Personal assistant with calendar, knowledge base, and reminders",
		Long: `aide - your personal assistant

Chat with an assistant that manages your Google Calendar, keeps a
per-user knowledge base, and tracks reminders. Run it as a CLI, a web
service, a Telegram bot, a daily-brief scheduler, or an MCP server.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVarP(&asUser, "user", "u", "", "Act as this account (email); defaults to BRIEF_USER")

	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewBriefCmd())
	cmd.AddCommand(NewWebCmd())
	cmd.AddCommand(NewBotCmd())
	cmd.AddCommand(NewSchedulerCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewKBCmd())
	cmd.AddCommand(NewRemindersCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
