// ABOUTME: Optional Charm KV mirror for knowledge base documents
// ABOUTME: Mirrors the live document to cloud-synced KV after each save
package kb

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/kv"
)

// CharmMirror copies saved documents into a charm cloud KV store so a user's
// knowledge base follows them across machines. It implements Mirror.
type CharmMirror struct {
	kv *kv.KV
	mu sync.Mutex
}

// NewCharmMirror opens the charm KV database, pulling remote data first.
func NewCharmMirror(host, dbName string) (*CharmMirror, error) {
	// kv.OpenWithDefaults reads CHARM_HOST from the environment
	os.Setenv("CHARM_HOST", host)

	db, err := kv.OpenWithDefaults(dbName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}
	_ = db.Sync()

	return &CharmMirror{kv: db}, nil
}

// Put stores the document bytes under key and syncs to the cloud.
func (m *CharmMirror) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.kv.Set([]byte(key), value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	_ = m.kv.Sync()
	return nil
}

// Close closes the KV database.
func (m *CharmMirror) Close() error {
	if m.kv != nil {
		err := m.kv.Close()
		m.kv = nil
		return err
	}
	return nil
}
