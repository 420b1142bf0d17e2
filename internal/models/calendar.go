// ABOUTME: Calendar event and tool-result types shared by adapter and agent
// ABOUTME: Tool results carry ok/message instead of raised errors
package models

import "time"

// Event is a calendar event as seen by the assistant.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	AllDay    bool      `json:"all_day,omitempty"`
	Attendees []string  `json:"attendees,omitempty"`
	Location  string    `json:"location,omitempty"`
}

// TimeSlot is a free interval returned by find_free_slots.
type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ToolResult is the structured outcome of one tool action. External API
// errors are folded into Message with OK false so the tool-call loop can
// always continue.
type ToolResult struct {
	OK      bool       `json:"ok"`
	Message string     `json:"message,omitempty"`
	EventID string     `json:"event_id,omitempty"`
	Events  []Event    `json:"events,omitempty"`
	Slots   []TimeSlot `json:"slots,omitempty"`
}
