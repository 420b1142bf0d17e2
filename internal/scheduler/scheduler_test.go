// ABOUTME: Tests for brief delivery and message formatting
// ABOUTME: Cron wiring is exercised through Deliver, not wall-clock waits
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/harper/aide/internal/models"
)

const testUser = "alice@example.com"

type stubCreds struct{ err error }

func (s *stubCreds) CredentialFor(context.Context, string) (*models.Credential, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Credential{UserID: testUser, AccessToken: "tok"}, nil
}

type stubBriefs struct {
	text string
	err  error
}

func (s *stubBriefs) Generate(context.Context, models.Credential, string) (string, error) {
	return s.text, s.err
}

type recordingSender struct {
	to, subject, body string
	calls             int
	err               error
}

func (r *recordingSender) Send(to, subject, body string) error {
	r.calls++
	r.to, r.subject, r.body = to, subject, body
	return r.err
}

func newTestScheduler(briefs BriefSource, creds CredentialSource, sender Sender) *Scheduler {
	s := New(briefs, creds, sender, testUser, 8, 0, time.UTC)
	s.clock = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) }
	return s
}

func TestDeliver(t *testing.T) {
	sender := &recordingSender{}
	s := newTestScheduler(&stubBriefs{text: "busy day ahead"}, &stubCreds{}, sender)

	if err := s.Deliver(context.Background()); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if sender.calls != 1 {
		t.Fatalf("sender called %d times", sender.calls)
	}
	if sender.to != testUser {
		t.Errorf("sent to %q", sender.to)
	}
	if !strings.Contains(sender.subject, "Tuesday, March 10") {
		t.Errorf("subject %q missing the date", sender.subject)
	}
	if sender.body != "busy day ahead" {
		t.Errorf("body %q", sender.body)
	}
}

func TestDeliverErrors(t *testing.T) {
	tests := []struct {
		name   string
		briefs BriefSource
		creds  CredentialSource
		sender *recordingSender
		want   string
	}{
		{"missing credential", &stubBriefs{}, &stubCreds{err: fmt.Errorf("none: %w", models.ErrNotFound)}, &recordingSender{}, "loading credential"},
		{"brief failure", &stubBriefs{err: errors.New("model down")}, &stubCreds{}, &recordingSender{}, "generating brief"},
		{"send failure", &stubBriefs{text: "x"}, &stubCreds{}, &recordingSender{err: errors.New("smtp refused")}, "sending brief"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(tt.briefs, tt.creds, tt.sender)
			err := s.Deliver(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want %q", err, tt.want)
			}
		})
	}
}

func TestStartRequiresRecipient(t *testing.T) {
	s := New(&stubBriefs{}, &stubCreds{}, &recordingSender{}, "", 8, 0, time.UTC)
	if err := s.Start(); err == nil {
		t.Error("Start without a recipient should fail")
	}
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("bot@example.com", "alice@example.com", "Daily brief", "hello")
	for _, want := range []string{
		"From: bot@example.com\r\n",
		"To: alice@example.com\r\n",
		"Subject: Daily brief\r\n",
		"\r\n\r\nhello\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
