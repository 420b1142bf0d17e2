// ABOUTME: Tests for the calendar action adapter over the in-memory backend
// ABOUTME: covering slot math, yearly recurrence, and failure folding
package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/harper/aide/internal/models"
)

var testCred = models.Credential{UserID: "alice@example.com", AccessToken: "tok"}

func newTestAdapter(t *testing.T, now time.Time) (*Adapter, *Fake) {
	t.Helper()
	fake := NewFake()
	a := NewAdapter(fake, time.UTC)
	a.clock = func() time.Time { return now }
	return a, fake
}

func mustArgs(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshaling args: %v", err)
	}
	return raw
}

func TestCreateAndListToday(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	a, _ := newTestAdapter(t, now)
	ctx := context.Background()

	res := a.Invoke(ctx, testCred, ActionCreateEvent, mustArgs(t, CreateEventArgs{
		Title: "Standup", Date: "2026-03-10", Start: "09:30", End: "10:00",
	}))
	if !res.OK {
		t.Fatalf("create_event failed: %s", res.Message)
	}
	if res.EventID == "" {
		t.Error("expected an event id")
	}

	res = a.Invoke(ctx, testCred, ActionListEventsToday, nil)
	if !res.OK {
		t.Fatalf("list_events_today failed: %s", res.Message)
	}
	if len(res.Events) != 1 || res.Events[0].Title != "Standup" {
		t.Errorf("got events %+v, want one Standup", res.Events)
	}
}

func TestYearlyEventSurfacesInLaterYears(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a, _ := newTestAdapter(t, now)
	ctx := context.Background()

	res := a.Invoke(ctx, testCred, ActionCreateRecurringYearlyEvent, mustArgs(t, CreateRecurringYearlyEventArgs{
		Title: "Mom's birthday", Date: "2026-03-15",
	}))
	if !res.OK {
		t.Fatalf("create_recurring_yearly_event failed: %s", res.Message)
	}

	for _, year := range []int{2026, 2027, 2030} {
		a.clock = func() time.Time {
			return time.Date(year, 3, 15, 7, 0, 0, 0, time.UTC)
		}
		res := a.Invoke(ctx, testCred, ActionListEventsToday, nil)
		if !res.OK {
			t.Fatalf("year %d: list failed: %s", year, res.Message)
		}
		if len(res.Events) != 1 || res.Events[0].Title != "Mom's birthday" {
			t.Errorf("year %d: got %+v, want the birthday", year, res.Events)
		}
		if !res.Events[0].AllDay {
			t.Errorf("year %d: yearly event should be all-day", year)
		}
	}

	// The day before the anniversary stays empty.
	a.clock = func() time.Time {
		return time.Date(2027, 3, 14, 7, 0, 0, 0, time.UTC)
	}
	res = a.Invoke(ctx, testCred, ActionListEventsToday, nil)
	if !res.OK || len(res.Events) != 0 {
		t.Errorf("march 14: got %+v, want none", res.Events)
	}
}

func TestFindFreeSlots(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	a, _ := newTestAdapter(t, now)
	ctx := context.Background()

	for _, ev := range []CreateEventArgs{
		{Title: "A", Date: "2026-03-10", Start: "09:00", End: "10:00"},
		{Title: "B", Date: "2026-03-10", Start: "13:00", End: "14:30"},
	} {
		if res := a.Invoke(ctx, testCred, ActionCreateEvent, mustArgs(t, ev)); !res.OK {
			t.Fatalf("creating %s: %s", ev.Title, res.Message)
		}
	}
	// All-day entries never block slots.
	if res := a.Invoke(ctx, testCred, ActionCreateRecurringYearlyEvent, mustArgs(t, CreateRecurringYearlyEventArgs{
		Title: "Anniversary", Date: "2026-03-10",
	})); !res.OK {
		t.Fatalf("creating all-day event: %s", res.Message)
	}

	res := a.Invoke(ctx, testCred, ActionFindFreeSlots, mustArgs(t, FindFreeSlotsArgs{
		Date: "2026-03-10", DurationMinutes: 60,
	}))
	if !res.OK {
		t.Fatalf("find_free_slots failed: %s", res.Message)
	}
	want := []models.TimeSlot{
		{Start: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), End: time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)},
		{Start: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC), End: time.Date(2026, 3, 10, 17, 0, 0, 0, time.UTC)},
	}
	if len(res.Slots) != len(want) {
		t.Fatalf("got %d slots %+v, want %d", len(res.Slots), res.Slots, len(want))
	}
	for i, slot := range res.Slots {
		if !slot.Start.Equal(want[i].Start) || !slot.End.Equal(want[i].End) {
			t.Errorf("slot %d: got %v-%v, want %v-%v", i, slot.Start, slot.End, want[i].Start, want[i].End)
		}
	}
}

func TestDeleteEvent(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	a, _ := newTestAdapter(t, now)
	ctx := context.Background()

	created := a.Invoke(ctx, testCred, ActionCreateEvent, mustArgs(t, CreateEventArgs{
		Title: "Doomed", Date: "2026-03-10", Start: "11:00", End: "11:30",
	}))
	if !created.OK {
		t.Fatalf("create: %s", created.Message)
	}

	res := a.Invoke(ctx, testCred, ActionDeleteEvent, mustArgs(t, DeleteEventArgs{EventID: created.EventID}))
	if !res.OK {
		t.Fatalf("delete failed: %s", res.Message)
	}

	res = a.Invoke(ctx, testCred, ActionDeleteEvent, mustArgs(t, DeleteEventArgs{EventID: created.EventID}))
	if res.OK {
		t.Error("second delete should fail")
	}
}

func TestInvokeFoldsErrorsIntoResult(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	a, fake := newTestAdapter(t, now)
	ctx := context.Background()

	tests := []struct {
		name    string
		action  Action
		args    json.RawMessage
		failure error
	}{
		{"backend error", ActionListEventsToday, nil, errors.New("api unreachable")},
		{"malformed args", ActionCreateEvent, json.RawMessage(`{"title":`), nil},
		{"bad date", ActionCreateEvent, mustArgs(t, CreateEventArgs{Title: "X", Date: "soon", Start: "09:00", End: "10:00"}), nil},
		{"inverted times", ActionCreateEvent, mustArgs(t, CreateEventArgs{Title: "X", Date: "2026-03-10", Start: "10:00", End: "09:00"}), nil},
		{"unknown action", Action("summon_meteor"), nil, nil},
		{"missing event id", ActionDeleteEvent, mustArgs(t, DeleteEventArgs{}), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake.FailWith = tt.failure
			defer func() { fake.FailWith = nil }()
			res := a.Invoke(ctx, testCred, tt.action, tt.args)
			if res.OK {
				t.Errorf("expected failed result, got %+v", res)
			}
			if res.Message == "" {
				t.Error("failed result should carry a message")
			}
		})
	}
}

func TestKnown(t *testing.T) {
	for _, a := range Actions {
		if !Known(string(a)) {
			t.Errorf("%s should be known", a)
		}
	}
	if Known("send_email") {
		t.Error("send_email is not a calendar action")
	}
}
