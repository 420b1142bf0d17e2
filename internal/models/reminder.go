// ABOUTME: Reminder is a per-user scheduled note read by the daily brief
// ABOUTME: Insertion order is display order; ids are unique per user
package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recurrence describes when a reminder is due.
type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
	RecurrenceYearly Recurrence = "yearly"
	// RecurrenceDate fires once on the reminder's Date, then stays listed
	// but never becomes due again.
	RecurrenceDate Recurrence = "date"
)

// ValidRecurrence reports whether r is a known recurrence kind.
func ValidRecurrence(r Recurrence) bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceYearly, RecurrenceDate:
		return true
	}
	return false
}

// Reminder is a single reminder entry.
type Reminder struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Recurrence Recurrence `json:"recurrence"`
	// Date is used by yearly (month and day) and date (exact day)
	// recurrences, in YYYY-MM-DD form. Empty otherwise.
	Date      string    `json:"date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewReminder creates a reminder with a generated id.
func NewReminder(text string, recurrence Recurrence, date string) Reminder {
	return Reminder{
		ID:         fmt.Sprintf("rem_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8]),
		Text:       text,
		Recurrence: recurrence,
		Date:       date,
		CreatedAt:  time.Now().UTC(),
	}
}

// DueOn reports whether the reminder is due on the given day. The day's
// location is the evaluation timezone; CreatedAt is stored UTC and is
// converted before comparing weekdays so the anchor matches local time.
func (r Reminder) DueOn(day time.Time) bool {
	switch r.Recurrence {
	case RecurrenceDaily:
		return true
	case RecurrenceWeekly:
		return r.CreatedAt.In(day.Location()).Weekday() == day.Weekday()
	case RecurrenceYearly:
		t, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return false
		}
		return t.Month() == day.Month() && t.Day() == day.Day()
	case RecurrenceDate:
		return r.Date == day.Format("2006-01-02")
	}
	return false
}
