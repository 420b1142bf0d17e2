// ABOUTME: Google Calendar backend for the adapter, built on calendar/v3
// ABOUTME: with per-call token sources from the auth manager
package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harper/aide/internal/auth"
	"github.com/harper/aide/internal/models"
)

const primaryCalendar = "primary"

// GoogleService implements Service against the Google Calendar API.
type GoogleService struct {
	auth *auth.Manager
	loc  *time.Location
}

// NewGoogleService builds a backend that mints a token source from mgr for
// each call, so refreshed tokens land back in the credential store.
func NewGoogleService(mgr *auth.Manager, loc *time.Location) *GoogleService {
	return &GoogleService{auth: mgr, loc: loc}
}

func (g *GoogleService) client(ctx context.Context, cred models.Credential) (*gcal.Service, error) {
	svc, err := gcal.NewService(ctx, option.WithTokenSource(g.auth.TokenSource(ctx, &cred)))
	if err != nil {
		return nil, fmt.Errorf("building calendar client: %v: %w", err, models.ErrExternalAPI)
	}
	return svc, nil
}

// EventsBetween lists events on the primary calendar touching [from, to),
// with recurring events expanded to single instances.
func (g *GoogleService) EventsBetween(ctx context.Context, cred models.Credential, from, to time.Time) ([]models.Event, error) {
	svc, err := g.client(ctx, cred)
	if err != nil {
		return nil, err
	}
	call := svc.Events.List(primaryCalendar).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("listing events: %v: %w", err, models.ErrExternalAPI)
	}
	events := make([]models.Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		ev, err := g.fromAPI(item)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// InsertEvent creates an event on the primary calendar. With yearly set the
// event becomes an all-day entry repeating with RRULE:FREQ=YEARLY.
func (g *GoogleService) InsertEvent(ctx context.Context, cred models.Credential, ev models.Event, yearly bool) (string, error) {
	svc, err := g.client(ctx, cred)
	if err != nil {
		return "", err
	}
	item := &gcal.Event{
		Summary:  ev.Title,
		Location: ev.Location,
	}
	for _, email := range ev.Attendees {
		item.Attendees = append(item.Attendees, &gcal.EventAttendee{Email: email})
	}
	if yearly || ev.AllDay {
		item.Start = &gcal.EventDateTime{Date: ev.Start.Format("2006-01-02")}
		item.End = &gcal.EventDateTime{Date: ev.End.Format("2006-01-02")}
	} else {
		item.Start = &gcal.EventDateTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: g.loc.String()}
		item.End = &gcal.EventDateTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: g.loc.String()}
	}
	if yearly {
		item.Recurrence = []string{"RRULE:FREQ=YEARLY"}
	}
	created, err := svc.Events.Insert(primaryCalendar, item).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("inserting event: %v: %w", err, models.ErrExternalAPI)
	}
	return created.Id, nil
}

// DeleteEvent removes an event from the primary calendar.
func (g *GoogleService) DeleteEvent(ctx context.Context, cred models.Credential, eventID string) error {
	svc, err := g.client(ctx, cred)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(primaryCalendar, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("deleting event %s: %v: %w", eventID, err, models.ErrExternalAPI)
	}
	return nil
}

func (g *GoogleService) fromAPI(item *gcal.Event) (models.Event, error) {
	ev := models.Event{
		ID:       item.Id,
		Title:    item.Summary,
		Location: item.Location,
	}
	for _, att := range item.Attendees {
		ev.Attendees = append(ev.Attendees, att.Email)
	}
	if item.Start != nil && item.Start.Date != "" {
		ev.AllDay = true
		start, err := time.ParseInLocation("2006-01-02", item.Start.Date, g.loc)
		if err != nil {
			return models.Event{}, fmt.Errorf("parsing all-day start %q: %v: %w", item.Start.Date, err, models.ErrExternalAPI)
		}
		ev.Start = start
		if item.End != nil && item.End.Date != "" {
			end, err := time.ParseInLocation("2006-01-02", item.End.Date, g.loc)
			if err != nil {
				return models.Event{}, fmt.Errorf("parsing all-day end %q: %v: %w", item.End.Date, err, models.ErrExternalAPI)
			}
			ev.End = end
		}
		return ev, nil
	}
	if item.Start != nil && item.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return models.Event{}, fmt.Errorf("parsing start %q: %v: %w", item.Start.DateTime, err, models.ErrExternalAPI)
		}
		ev.Start = start.In(g.loc)
	}
	if item.End != nil && item.End.DateTime != "" {
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return models.Event{}, fmt.Errorf("parsing end %q: %v: %w", item.End.DateTime, err, models.ErrExternalAPI)
		}
		ev.End = end.In(g.loc)
	}
	return ev, nil
}
