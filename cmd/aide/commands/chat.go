// ABOUTME: Chat command: one-shot messages or an interactive session
// ABOUTME: Routes input through the agent orchestrator
package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatSession string

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to your assistant",
		Long: `Talk to your assistant.

With a message argument, sends it and prints the reply. Without one,
starts an interactive session; exit with "quit" or Ctrl-D.

Examples:
  aide chat "what's on my calendar today?"
  aide chat --session planning "remind me to file taxes in April"
  aide chat`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatSession, "session", "", "Conversation session id (default: a fresh one)")

	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	orch, err := a.requireAgent()
	if err != nil {
		return err
	}
	user, err := a.resolveUser()
	if err != nil {
		return err
	}

	session := chatSession
	if session == "" {
		session = "cli-" + uuid.NewString()[:8]
	}
	ctx := cmd.Context()

	if len(args) > 0 {
		reply, err := orch.HandleMessage(ctx, user, session, args[0])
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Chatting as %s (session %s). Type quit to exit.\n", user, session)
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		reply, err := orch.HandleMessage(ctx, user, session, line)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
	}
	return scanner.Err()
}
