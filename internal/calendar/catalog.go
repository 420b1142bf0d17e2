// ABOUTME: Closed catalog of calendar tool actions and their argument schemas
// ABOUTME: Unknown action names fall through an explicit fallback branch
package calendar

// Action names the calendar operations the model may request. The set is
// closed: dispatch is an exhaustive switch with an explicit fallback.
type Action string

const (
	ActionListEventsToday            Action = "list_events_today"
	ActionListUpcomingEvents         Action = "list_upcoming_events"
	ActionCreateEvent                Action = "create_event"
	ActionCreateRecurringYearlyEvent Action = "create_recurring_yearly_event"
	ActionFindFreeSlots              Action = "find_free_slots"
	ActionDeleteEvent                Action = "delete_event"
)

// Actions lists every action in the catalog.
var Actions = []Action{
	ActionListEventsToday,
	ActionListUpcomingEvents,
	ActionCreateEvent,
	ActionCreateRecurringYearlyEvent,
	ActionFindFreeSlots,
	ActionDeleteEvent,
}

// Known reports whether name is in the catalog.
func Known(name string) bool {
	for _, a := range Actions {
		if string(a) == name {
			return true
		}
	}
	return false
}

// CreateEventArgs are the arguments for create_event.
type CreateEventArgs struct {
	Title     string   `json:"title"`
	Date      string   `json:"date"`  // YYYY-MM-DD
	Start     string   `json:"start"` // HH:MM, 24-hour
	End       string   `json:"end"`   // HH:MM, 24-hour
	Attendees []string `json:"attendees,omitempty"`
	Location  string   `json:"location,omitempty"`
}

// CreateRecurringYearlyEventArgs are the arguments for
// create_recurring_yearly_event. The event is all-day so it never blocks
// meeting slots.
type CreateRecurringYearlyEventArgs struct {
	Title string `json:"title"`
	Date  string `json:"date"` // YYYY-MM-DD; the year anchors the first occurrence
}

// FindFreeSlotsArgs are the arguments for find_free_slots. Attendees are
// accepted for forward compatibility; availability is computed from the
// requesting user's calendar only.
type FindFreeSlotsArgs struct {
	Date            string   `json:"date"` // YYYY-MM-DD
	DurationMinutes int      `json:"duration_minutes"`
	Attendees       []string `json:"attendees,omitempty"`
}

// ListUpcomingEventsArgs are the arguments for list_upcoming_events.
type ListUpcomingEventsArgs struct {
	Days int `json:"days"`
}

// DeleteEventArgs are the arguments for delete_event.
type DeleteEventArgs struct {
	EventID string `json:"event_id"`
}
