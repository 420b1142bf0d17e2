// ABOUTME: Scheduler command runs the daily brief cron job
// ABOUTME: Mails the brief to the configured user via SMTP
package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harper/aide/internal/scheduler"
)

var schedulerNow bool

// NewSchedulerCmd creates the scheduler command
func NewSchedulerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Run the daily brief scheduler",
		Long: `Run the daily brief scheduler.

Every day at BRIEF_HOUR:BRIEF_MINUTE (in AIDE_TIMEZONE) the brief for
BRIEF_USER is generated and mailed via SMTP_ADDRESS.

Examples:
  aide scheduler
  aide scheduler --now`,
		RunE: runScheduler,
	}

	cmd.Flags().BoolVar(&schedulerNow, "now", false, "Deliver one brief immediately and exit")

	return cmd
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.resolveUser()
	if err != nil {
		return err
	}
	if a.cfg.SMTPAddress == "" || a.cfg.SMTPPassword == "" {
		return fmt.Errorf("SMTP_ADDRESS and SMTP_APP_PASSWORD must be set")
	}

	mailer := scheduler.NewMailer(a.cfg.SMTPHost, a.cfg.SMTPPort, a.cfg.SMTPAddress, a.cfg.SMTPPassword)
	sched := scheduler.New(a.briefs, a.auth, mailer, user, a.cfg.BriefHour, a.cfg.BriefMinute, a.cfg.Location())

	if schedulerNow {
		return sched.Deliver(cmd.Context())
	}

	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	return nil
}
