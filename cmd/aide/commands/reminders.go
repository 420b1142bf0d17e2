// ABOUTME: Reminder commands: list, add, and remove
// ABOUTME: Works on the per-user reminders file next to the knowledge base
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/aide/internal/models"
)

var (
	reminderRecurrence string
	reminderDate       string
)

// NewRemindersCmd creates the reminders command group
func NewRemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Manage reminders",
		Long: `Manage reminders.

Examples:
  aide reminders list
  aide reminders add "water the plants" --recurrence daily
  aide reminders add "renew passport" --recurrence date --date 2026-04-01
  aide reminders remove rem_20260310_a1b2c3d4`,
	}

	cmd.AddCommand(newRemindersListCmd())
	cmd.AddCommand(newRemindersAddCmd())
	cmd.AddCommand(newRemindersRemoveCmd())

	return cmd
}

func newRemindersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all reminders",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			user, err := a.resolveUser()
			if err != nil {
				return err
			}
			reminders, err := a.kb.Reminders(user)
			if err != nil {
				return fmt.Errorf("listing reminders: %w", err)
			}
			if len(reminders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reminders.")
				return nil
			}
			for _, r := range reminders {
				line := fmt.Sprintf("%s  %s (%s", r.ID, r.Text, r.Recurrence)
				if r.Date != "" {
					line += " " + r.Date
				}
				line += ")"
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}

func newRemindersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			user, err := a.resolveUser()
			if err != nil {
				return err
			}
			rec := models.Recurrence(reminderRecurrence)
			if !models.ValidRecurrence(rec) {
				return fmt.Errorf("unknown recurrence %q", reminderRecurrence)
			}
			if (rec == models.RecurrenceYearly || rec == models.RecurrenceDate) && reminderDate == "" {
				return fmt.Errorf("%s recurrence needs --date", rec)
			}
			r := models.NewReminder(args[0], rec, reminderDate)
			if err := a.kb.AppendReminder(user, r); err != nil {
				return fmt.Errorf("saving reminder: %w", err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", r.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reminderRecurrence, "recurrence", string(models.RecurrenceNone), "none, daily, weekly, yearly, or date")
	cmd.Flags().StringVar(&reminderDate, "date", "", "YYYY-MM-DD, for yearly and date recurrence")

	return cmd
}

func newRemindersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a reminder by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.Close()
			user, err := a.resolveUser()
			if err != nil {
				return err
			}
			if err := a.kb.RemoveReminder(user, args[0]); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return fmt.Errorf("no reminder with id %s", args[0])
				}
				return fmt.Errorf("removing reminder: %w", err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			}
			return nil
		},
	}
}
