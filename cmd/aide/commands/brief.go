// ABOUTME: Brief command prints today's daily brief on demand
// ABOUTME: Uses the same generator the scheduler mails out
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/aide/internal/models"
)

// NewBriefCmd creates the brief command
func NewBriefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brief",
		Short: "Print today's daily brief",
		Long: `Print today's daily brief: schedule, due reminders, and a short
read on the day.

Examples:
  aide brief
  aide brief --user alice@example.com`,
		RunE: runBrief,
	}
}

func runBrief(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.resolveUser()
	if err != nil {
		return err
	}
	cred, err := a.auth.CredentialFor(cmd.Context(), user)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("no Google credential for %s: link the account first", user)
		}
		return fmt.Errorf("loading credential: %w", err)
	}
	text, err := a.briefs.Generate(cmd.Context(), *cred, user)
	if err != nil {
		return fmt.Errorf("generating brief: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
