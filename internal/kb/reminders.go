// ABOUTME: Reminder list persistence alongside the knowledge base document
// ABOUTME: JSON file per user, insertion order preserved, atomic rewrites
package kb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harper/aide/internal/models"
)

const remindersFile = "reminders.json"

func (s *Store) remindersPath(user string) string {
	return filepath.Join(s.userDir(user), remindersFile)
}

// Reminders returns the user's reminders in insertion order. A missing file
// is an empty list.
func (s *Store) Reminders(user string) ([]models.Reminder, error) {
	data, err := os.ReadFile(s.remindersPath(user))
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Reminder{}, nil
		}
		return nil, fmt.Errorf("reading reminders for %s: %w", user, models.ErrIO)
	}
	var reminders []models.Reminder
	if err := json.Unmarshal(data, &reminders); err != nil {
		return nil, fmt.Errorf("parsing reminders for %s: %v: %w", user, err, models.ErrIO)
	}
	return reminders, nil
}

// AppendReminder adds a reminder to the end of the user's list.
func (s *Store) AppendReminder(user string, r models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, err := s.Reminders(user)
	if err != nil {
		return err
	}
	reminders = append(reminders, r)
	return s.writeReminders(user, reminders)
}

// RemoveReminder deletes the reminder with the given id. Removing an id
// that does not exist returns ErrNotFound.
func (s *Store) RemoveReminder(user, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reminders, err := s.Reminders(user)
	if err != nil {
		return err
	}
	kept := reminders[:0]
	found := false
	for _, r := range reminders {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return fmt.Errorf("reminder %s: %w", id, models.ErrNotFound)
	}
	return s.writeReminders(user, kept)
}

// writeReminders rewrites the full list atomically. Same-id concurrent
// writes are last-writer-wins; distinct ids never conflict under the store
// mutex.
func (s *Store) writeReminders(user string, reminders []models.Reminder) error {
	dir := s.userDir(user)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating user directory: %v: %w", err, models.ErrIO)
	}

	data, err := json.MarshalIndent(reminders, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling reminders: %v: %w", err, models.ErrIO)
	}

	tmp, err := os.CreateTemp(dir, remindersFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %v: %w", err, models.ErrIO)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %v: %w", err, models.ErrIO)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %v: %w", err, models.ErrIO)
	}
	if err := os.Rename(tmpPath, s.remindersPath(user)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("swapping reminders into place: %v: %w", err, models.ErrIO)
	}
	return nil
}
