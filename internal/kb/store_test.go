// ABOUTME: Tests for the knowledge base store
// ABOUTME: Covers empty-load, round-trip, backup snapshots, and reminders
package kb

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/aide/internal/models"
)

const testUser = "alice@example.com"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestLoad_NoRecordReturnsEmptyDocument(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.Load(testUser)
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for unknown user", err)
	}

	for _, name := range models.KnownSections {
		body, ok := doc.Get(name)
		if !ok {
			t.Errorf("section %q missing from fresh document", name)
		}
		if body != "" {
			t.Errorf("section %q = %q, want empty", name, body)
		}
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	doc := models.NewKnowledgeBaseDocument()
	doc.Set(models.SectionAboutMe, "I work remotely.\nI like espresso.")
	doc.Set(models.SectionImportantPeople, "- **Mom (Jane)**: Birthday March 15")

	if err := s.Save(testUser, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(testUser)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, name := range models.KnownSections {
		want, _ := doc.Get(name)
		body, _ := got.Get(name)
		if body != want {
			t.Errorf("section %q = %q, want %q", name, body, want)
		}
	}
}

func TestSave_PreservesUnknownSections(t *testing.T) {
	s := newTestStore(t)

	raw := models.DocumentTitle + "\n\n## Secret Recipes\ngrandma's chili\n\n## About Me\nhello\n"
	dir := s.userDir(testUser)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, documentFile), []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := s.Load(testUser)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	doc.Set(models.SectionAboutMe, "hello again")
	if err := s.Save(testUser, doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(testUser)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	body, ok := got.Get("Secret Recipes")
	if !ok || body != "grandma's chili" {
		t.Errorf("unknown section body = %q (present=%v), want preserved verbatim", body, ok)
	}
}

func TestSave_CreatesOneBackupPerSave(t *testing.T) {
	s := newTestStore(t)

	doc := models.NewKnowledgeBaseDocument()
	doc.Set(models.SectionAboutMe, "v1")
	if err := s.Save(testUser, doc); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	// First save has no previous content so no backup yet
	backups, err := s.Backups(testUser)
	if err != nil {
		t.Fatalf("Backups() error = %v", err)
	}
	if len(backups) != 0 {
		t.Fatalf("backups after first save = %d, want 0", len(backups))
	}

	doc.Set(models.SectionAboutMe, "v2")
	if err := s.Save(testUser, doc); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	backups, _ = s.Backups(testUser)
	if len(backups) != 1 {
		t.Fatalf("backups after second save = %d, want 1", len(backups))
	}

	// Backup holds the previous live content
	data, err := os.ReadFile(filepath.Join(s.userDir(testUser), backups[0]))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "v1") {
		t.Errorf("backup content = %q, want previous version v1", string(data))
	}
}

func TestSave_IdenticalContentStillSnapshots(t *testing.T) {
	s := newTestStore(t)
	s.clock = func() time.Time { return time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC) }

	doc := models.NewKnowledgeBaseDocument()
	doc.Set(models.SectionNotes, "same thing")

	for i := 0; i < 3; i++ {
		if err := s.Save(testUser, doc); err != nil {
			t.Fatalf("Save() #%d error = %v", i+1, err)
		}
	}

	// Saves 2 and 3 snapshot even though content is unchanged, and the
	// frozen clock forces the monotonic suffix path.
	backups, err := s.Backups(testUser)
	if err != nil {
		t.Fatalf("Backups() error = %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("backups = %v, want 2 snapshots", backups)
	}
	if backups[0] == backups[1] {
		t.Errorf("backup names not distinct: %v", backups)
	}
}

func TestAppendSection(t *testing.T) {
	s := newTestStore(t)

	if err := s.AppendSection(testUser, models.SectionImportantPeople, "- Partner (Alex): allergic to shellfish"); err != nil {
		t.Fatalf("AppendSection() error = %v", err)
	}
	if err := s.AppendSection(testUser, models.SectionImportantPeople, "- Mom (Jane): birthday March 15"); err != nil {
		t.Fatalf("AppendSection() error = %v", err)
	}

	doc, err := s.Load(testUser)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	body, _ := doc.Get(models.SectionImportantPeople)
	if !strings.Contains(body, "shellfish") || !strings.Contains(body, "March 15") {
		t.Errorf("section body = %q, want both appended lines", body)
	}
}

func TestReminders_AppendAndRemove(t *testing.T) {
	s := newTestStore(t)

	r1 := models.NewReminder("stretch", models.RecurrenceDaily, "")
	r2 := models.NewReminder("water plants", models.RecurrenceWeekly, "")
	if err := s.AppendReminder(testUser, r1); err != nil {
		t.Fatalf("AppendReminder() error = %v", err)
	}
	if err := s.AppendReminder(testUser, r2); err != nil {
		t.Fatalf("AppendReminder() error = %v", err)
	}

	got, err := s.Reminders(testUser)
	if err != nil {
		t.Fatalf("Reminders() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != r1.ID || got[1].ID != r2.ID {
		t.Fatalf("Reminders() = %+v, want insertion order [r1 r2]", got)
	}

	if err := s.RemoveReminder(testUser, r1.ID); err != nil {
		t.Fatalf("RemoveReminder() error = %v", err)
	}
	got, _ = s.Reminders(testUser)
	if len(got) != 1 || got[0].ID != r2.ID {
		t.Errorf("Reminders() after remove = %+v, want only r2", got)
	}
}

func TestRemoveReminder_UnknownID(t *testing.T) {
	s := newTestStore(t)

	err := s.RemoveReminder(testUser, "rem_nope")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("RemoveReminder() error = %v, want ErrNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	doc := models.NewKnowledgeBaseDocument()
	doc.Set(models.SectionImportantPeople, "- Partner (Alex): allergic to shellfish")
	if err := s.Save(testUser, doc); err != nil {
		t.Fatal(err)
	}

	results, err := s.Search(testUser, "SHELLFISH")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Search() results = %d, want 1", len(results))
	}
	if !strings.Contains(results[0], "Alex") {
		t.Errorf("result = %q, want surrounding context", results[0])
	}
}

func TestBriefContext(t *testing.T) {
	s := newTestStore(t)
	doc := models.NewKnowledgeBaseDocument()
	doc.Set(models.SectionPreferences, "mornings are for deep work")
	if err := s.Save(testUser, doc); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendReminder(testUser, models.NewReminder("call dentist", models.RecurrenceNone, "")); err != nil {
		t.Fatal(err)
	}

	ctx, err := s.BriefContext(testUser)
	if err != nil {
		t.Fatalf("BriefContext() error = %v", err)
	}
	if !strings.Contains(ctx, "deep work") || !strings.Contains(ctx, "call dentist") {
		t.Errorf("BriefContext() missing document or reminder content:\n%s", ctx)
	}
}
