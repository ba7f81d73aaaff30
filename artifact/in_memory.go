package artifact

import (
	"sort"
	"sync"
)

// InMemoryStore is a process-local ArtifactStore for tests. Data is copied on
// save and retrieval.
//
// Layout: jobName -> artifactID -> raw bytes
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]map[string][]byte
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]map[string][]byte)}
}

// Save stores (or overwrites) the artifact bytes for the given job and id.
func (a *InMemoryStore) Save(jobName, artifactID string, data []byte) error {
	if jobName == "" || artifactID == "" {
		return ErrInvalidName
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.artifacts[jobName]; !exists {
		a.artifacts[jobName] = make(map[string][]byte)
	}
	a.artifacts[jobName][artifactID] = clone(data)
	return nil
}

// Get returns a copy of the stored artifact bytes or ErrNotFound.
func (a *InMemoryStore) Get(jobName, artifactID string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	data, ok := a.artifacts[jobName][artifactID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(data), nil
}

// List returns the sorted artifact ids stored for the job.
func (a *InMemoryStore) List(jobName string) ([]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ids := make([]string, 0, len(a.artifacts[jobName]))
	for id := range a.artifacts[jobName] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (a *InMemoryStore) Delete(jobName, artifactID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.artifacts[jobName]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m[artifactID]; !ok {
		return ErrNotFound
	}
	delete(m, artifactID)
	return nil
}

func clone(data []byte) []byte {
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp
}
