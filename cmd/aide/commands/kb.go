// ABOUTME: Knowledge base commands: show, append, search, and backups
// ABOUTME: Operates directly on the per-user document store
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewKBCmd creates the kb command group
func NewKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect and edit the knowledge base",
		Long: `Inspect and edit the knowledge base.

Examples:
  aide kb show
  aide kb append "Important People" "Sister: Maya, lives in Lisbon"
  aide kb search lisbon
  aide kb backups`,
	}

	cmd.AddCommand(newKBShowCmd())
	cmd.AddCommand(newKBAppendCmd())
	cmd.AddCommand(newKBSearchCmd())
	cmd.AddCommand(newKBBackupsCmd())

	return cmd
}

func newKBShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the full knowledge base document",
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
			doc, err := a.kb.Load(user)
			if err != nil {
				return fmt.Errorf("loading knowledge base: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(doc.Marshal()))
			return nil
		},
	}
}

func newKBAppendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "append <section> <text>",
		Short: "Append text to a section",
		Args:  cobra.ExactArgs(2),
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
			if err := a.kb.AppendSection(user, args[0], args[1]); err != nil {
				return fmt.Errorf("appending to %q: %w", args[0], err)
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Added to %q\n", args[0])
			}
			return nil
		},
	}
}

func newKBSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the knowledge base",
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
			matches, err := a.kb.Search(user, args[0])
			if err != nil {
				return fmt.Errorf("searching: %w", err)
			}
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(matches, "\n---\n"))
			return nil
		},
	}
}

func newKBBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backups",
		Short: "List knowledge base backups",
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
			backups, err := a.kb.Backups(user)
			if err != nil {
				return fmt.Errorf("listing backups: %w", err)
			}
			if len(backups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No backups yet.")
				return nil
			}
			for _, b := range backups {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}
