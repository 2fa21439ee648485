package cloud

import (
	"fmt"
	"path/filepath"
	"sync"
)

// MemoryStore is an in-memory Reader/Writer for tests. Clouds are keyed by
// cleaned path; mode is ignored on read since the stored Cloud already carries
// whatever columns the test registered.
type MemoryStore struct {
	mu     sync.RWMutex
	clouds map[string]*Cloud

	// Writes records every Write call in order. Test helper.
	Writes []WriteRecord
}

// WriteRecord captures one Writer.Write invocation.
type WriteRecord struct {
	Path  string
	Cloud *Cloud
	Extra []ExtraField
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{clouds: make(map[string]*Cloud)}
}

// Put registers a cloud under the given path.
func (m *MemoryStore) Put(path string, c *Cloud) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clouds[filepath.Clean(path)] = c
}

// Read returns the cloud registered under path.
func (m *MemoryStore) Read(path string, mode Mode) (*Cloud, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.clouds[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("cloud: no dataset at %s", path)
	}
	return c, nil
}

// Write stores the cloud and records the call.
func (m *MemoryStore) Write(path string, c *Cloud, extra []ExtraField) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clouds[filepath.Clean(path)] = c
	m.Writes = append(m.Writes, WriteRecord{Path: path, Cloud: c, Extra: extra})
	return nil
}

// Verify at compile time that MemoryStore is a Reader and Writer.
var (
	_ Reader = (*MemoryStore)(nil)
	_ Writer = (*MemoryStore)(nil)
)
