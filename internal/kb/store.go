// ABOUTME: Knowledge Base Store: per-user sectioned memory document on disk
// ABOUTME: Atomic write-then-swap saves with timestamped backup snapshots
package kb

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harper/aide/internal/models"
)

const (
	documentFile = "knowledge_base.md"
	backupPrefix = "knowledge_base_backup_"
)

// Mirror receives a copy of the live document after each successful save.
// Mirror failures are logged and never surfaced to the caller.
type Mirror interface {
	Put(key string, value []byte) error
}

// Store manages knowledge base documents and reminders for all users.
// Each user owns one document, one reminders list, and an append-only set
// of backup snapshots under dataDir/users/<user>/.
type Store struct {
	dataDir string
	mirror  Mirror
	clock   func() time.Time
	mu      sync.Mutex
}

// NewStore creates a store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{
		dataDir: dataDir,
		clock:   time.Now,
	}
}

// SetMirror attaches an optional cloud mirror for saved documents.
func (s *Store) SetMirror(m Mirror) {
	s.mirror = m
}

// userDir returns the per-user directory, sanitizing the email for use as
// a path segment.
func (s *Store) userDir(user string) string {
	safe := strings.ReplaceAll(strings.ReplaceAll(user, "@", "_at_"), ".", "_")
	return filepath.Join(s.dataDir, "users", safe)
}

func (s *Store) documentPath(user string) string {
	return filepath.Join(s.userDir(user), documentFile)
}

// Load reads the user's document. A missing file is not an error: the
// caller receives a document with every known section present and empty.
func (s *Store) Load(user string) (*models.KnowledgeBaseDocument, error) {
	data, err := os.ReadFile(s.documentPath(user))
	if err != nil {
		if os.IsNotExist(err) {
			return models.NewKnowledgeBaseDocument(), nil
		}
		return nil, fmt.Errorf("reading knowledge base for %s: %w", user, models.ErrIO)
	}
	return models.ParseKnowledgeBaseDocument(data), nil
}

// Save writes the full document atomically. The previous live content is
// snapshotted to a timestamped backup first; a failure at any step leaves
// the live document untouched.
func (s *Store) Save(user string, doc *models.KnowledgeBaseDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(user, doc)
}

func (s *Store) saveLocked(user string, doc *models.KnowledgeBaseDocument) error {
	dir := s.userDir(user)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating user directory: %v: %w", err, models.ErrIO)
	}

	livePath := s.documentPath(user)
	if prev, err := os.ReadFile(livePath); err == nil {
		if err := s.writeBackup(dir, prev); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("reading live document: %v: %w", err, models.ErrIO)
	}

	data := doc.Marshal()
	tmp, err := os.CreateTemp(dir, documentFile+".tmp-*")
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
	if err := os.Rename(tmpPath, livePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("swapping document into place: %v: %w", err, models.ErrIO)
	}

	if s.mirror != nil {
		if err := s.mirror.Put("kb:"+user, data); err != nil {
			log.Printf("Warning: knowledge base mirror failed for %s: %v", user, err)
		}
	}
	return nil
}

// writeBackup snapshots prev to a new backup file with a monotonically
// increasing suffix. Multiple saves within one second get _2, _3, ...
func (s *Store) writeBackup(dir string, prev []byte) error {
	stamp := s.clock().Format("20060102_150405")
	name := backupPrefix + stamp + ".md"
	for n := 2; ; n++ {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, prev, 0644); err != nil {
				return fmt.Errorf("writing backup: %v: %w", err, models.ErrIO)
			}
			return nil
		}
		name = fmt.Sprintf("%s%s_%d.md", backupPrefix, stamp, n)
	}
}

// AppendSection appends text to a section of the user's document, creating
// the section if it is unknown. The full document is rewritten: correctness
// of the always-all-sections invariant is easier to guarantee by rewriting
// than by patching text in place.
func (s *Store) AppendSection(user, section, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.Load(user)
	if err != nil {
		return err
	}
	doc.Append(section, text)
	return s.saveLocked(user, doc)
}

// Backups lists the user's backup snapshot filenames, oldest first. The
// snapshots are read-only history kept for manual recovery.
func (s *Store) Backups(user string) ([]string, error) {
	entries, err := os.ReadDir(s.userDir(user))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing backups: %v: %w", err, models.ErrIO)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupPrefix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Search returns case-insensitive matches in the user's document, each with
// two lines of surrounding context.
func (s *Store) Search(user, query string) ([]string, error) {
	doc, err := s.Load(user)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(doc.Marshal()), "\n")
	needle := strings.ToLower(query)
	var results []string
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		start := i - 2
		if start < 0 {
			start = 0
		}
		end := i + 3
		if end > len(lines) {
			end = len(lines)
		}
		results = append(results, strings.Join(lines[start:end], "\n"))
	}
	return results, nil
}
