// ABOUTME: Cron-driven daily brief delivery at a configured local time
// ABOUTME: One job per configured user, mailed via the SMTP sender
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/harper/aide/internal/models"
)

// CredentialSource resolves a user's calendar credential for the brief run.
type CredentialSource interface {
	CredentialFor(ctx context.Context, user string) (*models.Credential, error)
}

// BriefSource produces the brief text.
type BriefSource interface {
	Generate(ctx context.Context, cred models.Credential, user string) (string, error)
}

// Scheduler mails the daily brief to one user at a fixed local time.
type Scheduler struct {
	cron   *cron.Cron
	briefs BriefSource
	creds  CredentialSource
	sender Sender
	user   string
	hour   int
	minute int
	loc    *time.Location
	clock  func() time.Time
}

// New builds a scheduler that fires at hour:minute in loc every day.
func New(briefs BriefSource, creds CredentialSource, sender Sender, user string, hour, minute int, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		briefs: briefs,
		creds:  creds,
		sender: sender,
		user:   user,
		hour:   hour,
		minute: minute,
		loc:    loc,
		clock:  time.Now,
	}
}

// Start registers the daily job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.user == "" {
		return fmt.Errorf("scheduler needs a brief recipient")
	}
	spec := fmt.Sprintf("%d %d * * *", s.minute, s.hour)
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return fmt.Errorf("registering brief job %q: %w", spec, err)
	}
	s.cron.Start()
	log.Printf("daily brief scheduled for %02d:%02d %s (user %s)", s.hour, s.minute, s.loc, s.user)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := s.Deliver(ctx); err != nil {
		log.Printf("error: daily brief for %s: %v", s.user, err)
	}
}

// Deliver generates and mails one brief immediately. The cron job calls
// it on schedule; the CLI exposes it for a manual run.
func (s *Scheduler) Deliver(ctx context.Context) error {
	cred, err := s.creds.CredentialFor(ctx, s.user)
	if err != nil {
		return fmt.Errorf("loading credential: %w", err)
	}
	text, err := s.briefs.Generate(ctx, *cred, s.user)
	if err != nil {
		return fmt.Errorf("generating brief: %w", err)
	}
	subject := fmt.Sprintf("Daily brief for %s", s.clock().In(s.loc).Format("Monday, January 2"))
	if err := s.sender.Send(s.user, subject, text); err != nil {
		return fmt.Errorf("sending brief: %w", err)
	}
	log.Printf("daily brief delivered to %s", s.user)
	return nil
}
