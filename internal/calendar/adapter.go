// ABOUTME: Dispatches catalog actions to a calendar backend and folds every
// ABOUTME: failure into the tool result so the orchestration loop never aborts
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/harper/aide/internal/models"
)

// Working-day bounds used by find_free_slots.
const (
	workdayStartHour = 9
	workdayEndHour   = 17
)

// Service is the backend the adapter drives. GoogleService implements it
// against the Calendar API; tests substitute an in-memory fake.
type Service interface {
	EventsBetween(ctx context.Context, cred models.Credential, from, to time.Time) ([]models.Event, error)
	InsertEvent(ctx context.Context, cred models.Credential, ev models.Event, yearly bool) (string, error)
	DeleteEvent(ctx context.Context, cred models.Credential, eventID string) error
}

// Adapter turns catalog actions into backend calls. Every outcome, success
// or failure, is a ToolResult; Invoke never returns an error.
type Adapter struct {
	svc   Service
	loc   *time.Location
	clock func() time.Time
}

// NewAdapter builds an adapter over svc. All date parsing and slot math
// happens in loc.
func NewAdapter(svc Service, loc *time.Location) *Adapter {
	return &Adapter{svc: svc, loc: loc, clock: time.Now}
}

// Invoke runs one catalog action with raw JSON arguments from the model.
// Malformed arguments and backend failures come back as failed results.
func (a *Adapter) Invoke(ctx context.Context, cred models.Credential, action Action, args json.RawMessage) models.ToolResult {
	switch action {
	case ActionListEventsToday:
		return a.listEventsToday(ctx, cred)
	case ActionListUpcomingEvents:
		return a.listUpcomingEvents(ctx, cred, args)
	case ActionCreateEvent:
		return a.createEvent(ctx, cred, args)
	case ActionCreateRecurringYearlyEvent:
		return a.createRecurringYearlyEvent(ctx, cred, args)
	case ActionFindFreeSlots:
		return a.findFreeSlots(ctx, cred, args)
	case ActionDeleteEvent:
		return a.deleteEvent(ctx, cred, args)
	default:
		return failure(fmt.Sprintf("unknown calendar action %q", action))
	}
}

func (a *Adapter) listEventsToday(ctx context.Context, cred models.Credential) models.ToolResult {
	from := a.startOfDay(a.clock().In(a.loc))
	to := from.AddDate(0, 0, 1)
	events, err := a.svc.EventsBetween(ctx, cred, from, to)
	if err != nil {
		return failure(fmt.Sprintf("listing today's events: %v", err))
	}
	return models.ToolResult{
		OK:      true,
		Message: fmt.Sprintf("%d event(s) today", len(events)),
		Events:  events,
	}
}

func (a *Adapter) listUpcomingEvents(ctx context.Context, cred models.Credential, raw json.RawMessage) models.ToolResult {
	var args ListUpcomingEventsArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	days := args.Days
	if days <= 0 {
		days = 7
	}
	from := a.startOfDay(a.clock().In(a.loc))
	to := from.AddDate(0, 0, days)
	events, err := a.svc.EventsBetween(ctx, cred, from, to)
	if err != nil {
		return failure(fmt.Sprintf("listing upcoming events: %v", err))
	}
	return models.ToolResult{
		OK:      true,
		Message: fmt.Sprintf("%d event(s) in the next %d day(s)", len(events), days),
		Events:  events,
	}
}

func (a *Adapter) createEvent(ctx context.Context, cred models.Credential, raw json.RawMessage) models.ToolResult {
	var args CreateEventArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	if args.Title == "" {
		return failure("create_event: title is required")
	}
	day, err := time.ParseInLocation("2006-01-02", args.Date, a.loc)
	if err != nil {
		return failure(fmt.Sprintf("create_event: bad date %q: %v", args.Date, err))
	}
	start, err := atClock(day, args.Start)
	if err != nil {
		return failure(fmt.Sprintf("create_event: bad start %q: %v", args.Start, err))
	}
	end, err := atClock(day, args.End)
	if err != nil {
		return failure(fmt.Sprintf("create_event: bad end %q: %v", args.End, err))
	}
	if !end.After(start) {
		return failure("create_event: end must be after start")
	}
	ev := models.Event{
		Title:     args.Title,
		Start:     start,
		End:       end,
		Attendees: args.Attendees,
		Location:  args.Location,
	}
	id, err := a.svc.InsertEvent(ctx, cred, ev, false)
	if err != nil {
		return failure(fmt.Sprintf("creating event: %v", err))
	}
	return models.ToolResult{
		OK:      true,
		Message: fmt.Sprintf("created %q on %s %s-%s", args.Title, args.Date, args.Start, args.End),
		EventID: id,
	}
}

func (a *Adapter) createRecurringYearlyEvent(ctx context.Context, cred models.Credential, raw json.RawMessage) models.ToolResult {
	var args CreateRecurringYearlyEventArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	if args.Title == "" {
		return failure("create_recurring_yearly_event: title is required")
	}
	day, err := time.ParseInLocation("2006-01-02", args.Date, a.loc)
	if err != nil {
		return failure(fmt.Sprintf("create_recurring_yearly_event: bad date %q: %v", args.Date, err))
	}
	ev := models.Event{
		Title:  args.Title,
		Start:  day,
		End:    day.AddDate(0, 0, 1),
		AllDay: true,
	}
	id, err := a.svc.InsertEvent(ctx, cred, ev, true)
	if err != nil {
		return failure(fmt.Sprintf("creating yearly event: %v", err))
	}
	return models.ToolResult{
		OK:      true,
		Message: fmt.Sprintf("created yearly event %q recurring every %s", args.Title, day.Format("January 2")),
		EventID: id,
	}
}

func (a *Adapter) findFreeSlots(ctx context.Context, cred models.Credential, raw json.RawMessage) models.ToolResult {
	var args FindFreeSlotsArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	day, err := time.ParseInLocation("2006-01-02", args.Date, a.loc)
	if err != nil {
		return failure(fmt.Sprintf("find_free_slots: bad date %q: %v", args.Date, err))
	}
	dur := time.Duration(args.DurationMinutes) * time.Minute
	if dur <= 0 {
		dur = 30 * time.Minute
	}
	from := day.Add(workdayStartHour * time.Hour)
	to := day.Add(workdayEndHour * time.Hour)
	events, err := a.svc.EventsBetween(ctx, cred, a.startOfDay(day), day.AddDate(0, 0, 1))
	if err != nil {
		return failure(fmt.Sprintf("finding free slots: %v", err))
	}
	slots := freeSlots(from, to, dur, events)
	return models.ToolResult{
		OK:      true,
		Message: fmt.Sprintf("%d free slot(s) of %d minutes on %s", len(slots), int(dur.Minutes()), args.Date),
		Slots:   slots,
	}
}

func (a *Adapter) deleteEvent(ctx context.Context, cred models.Credential, raw json.RawMessage) models.ToolResult {
	var args DeleteEventArgs
	if err := unmarshalArgs(raw, &args); err != nil {
		return failure(err.Error())
	}
	if args.EventID == "" {
		return failure("delete_event: event_id is required")
	}
	if err := a.svc.DeleteEvent(ctx, cred, args.EventID); err != nil {
		return failure(fmt.Sprintf("deleting event %s: %v", args.EventID, err))
	}
	return models.ToolResult{OK: true, Message: fmt.Sprintf("deleted event %s", args.EventID), EventID: args.EventID}
}

func (a *Adapter) startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.loc)
}

// freeSlots subtracts busy intervals from the working window. All-day
// events never block a slot.
func freeSlots(from, to time.Time, dur time.Duration, events []models.Event) []models.TimeSlot {
	busy := make([]models.TimeSlot, 0, len(events))
	for _, ev := range events {
		if ev.AllDay {
			continue
		}
		if ev.End.Before(from) || ev.Start.After(to) {
			continue
		}
		busy = append(busy, models.TimeSlot{Start: ev.Start, End: ev.End})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	var slots []models.TimeSlot
	cursor := from
	for _, b := range busy {
		if b.Start.After(cursor) && b.Start.Sub(cursor) >= dur {
			slots = append(slots, models.TimeSlot{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if to.After(cursor) && to.Sub(cursor) >= dur {
		slots = append(slots, models.TimeSlot{Start: cursor, End: to})
	}
	return slots
}

func atClock(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

func unmarshalArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("bad tool arguments: %v", err)
	}
	return nil
}

func failure(msg string) models.ToolResult {
	return models.ToolResult{OK: false, Message: msg}
}
