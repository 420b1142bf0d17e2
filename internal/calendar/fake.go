// ABOUTME: In-memory calendar backend for tests and offline development
// ABOUTME: Expands yearly entries into each year a query window touches
package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harper/aide/internal/models"
)

type fakeEntry struct {
	event  models.Event
	yearly bool
}

// Fake is an in-memory Service. It ignores credentials and keeps events per
// instance, which is enough for tests and the offline dev mode.
type Fake struct {
	mu      sync.Mutex
	entries map[string]fakeEntry

	// FailWith, when set, makes every call return that error.
	FailWith error
}

// NewFake returns an empty in-memory calendar.
func NewFake() *Fake {
	return &Fake{entries: make(map[string]fakeEntry)}
}

// EventsBetween returns events overlapping [from, to), oldest first. Yearly
// entries surface once for every anniversary inside the window.
func (f *Fake) EventsBetween(_ context.Context, _ models.Credential, from, to time.Time) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return nil, f.FailWith
	}
	var out []models.Event
	for id, e := range f.entries {
		if e.yearly {
			for year := from.Year(); year <= to.Year(); year++ {
				occ := e.event
				occ.ID = id
				occ.Start = time.Date(year, e.event.Start.Month(), e.event.Start.Day(), 0, 0, 0, 0, from.Location())
				occ.End = occ.Start.AddDate(0, 0, 1)
				if occ.Start.Before(e.event.Start) {
					continue // before the anchor occurrence
				}
				if occ.End.After(from) && occ.Start.Before(to) {
					out = append(out, occ)
				}
			}
			continue
		}
		ev := e.event
		ev.ID = id
		if ev.End.After(from) && ev.Start.Before(to) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// InsertEvent stores the event and returns its generated id.
func (f *Fake) InsertEvent(_ context.Context, _ models.Credential, ev models.Event, yearly bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return "", f.FailWith
	}
	id := uuid.NewString()
	f.entries[id] = fakeEntry{event: ev, yearly: yearly}
	return id, nil
}

// DeleteEvent removes a stored event.
func (f *Fake) DeleteEvent(_ context.Context, _ models.Credential, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWith != nil {
		return f.FailWith
	}
	if _, ok := f.entries[eventID]; !ok {
		return fmt.Errorf("event %s: %w", eventID, models.ErrNotFound)
	}
	delete(f.entries, eventID)
	return nil
}
