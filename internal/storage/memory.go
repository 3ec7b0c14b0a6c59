package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/rezforge/launchpad/backend/internal/types"
)

// Memory is an in-process realization of Gateway preserving insertion
// order, mirroring the natural order of a document store. It backs tests
// and storage-less development runs.
type Memory struct {
	mu          sync.RWMutex
	collections []types.PackageCollection
	stages      []types.Stage
}

// NewMemory creates an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) FindCollections(_ context.Context, uri string) ([]types.PackageCollection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.PackageCollection
	for _, rec := range m.collections {
		if uri == "" || rec.URI == uri {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *Memory) InsertCollection(_ context.Context, rec types.PackageCollection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Duplicate versions within a uri are permitted; append-only.
	m.collections = append(m.collections, rec)
	return nil
}

func (m *Memory) FindCollectionTools(_ context.Context, version, uri string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.collections {
		if rec.Version == version && rec.URI == uri {
			return rec.Tools, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindStages(_ context.Context, uri string, activeOnly bool) ([]types.Stage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.Stage
	for _, st := range m.stages {
		if st.URI != uri {
			continue
		}
		if activeOnly && !st.Active {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func (m *Memory) InsertStage(_ context.Context, st types.Stage) (types.Stage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st.ID = uuid.NewString()
	m.stages = append(m.stages, st)
	return st, nil
}

func (m *Memory) SetStagesActive(_ context.Context, name, uri string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Zero matches is not an error.
	for i := range m.stages {
		if m.stages[i].Name == name && m.stages[i].URI == uri {
			m.stages[i].Active = active
		}
	}
	return nil
}

func (m *Memory) SetStageActiveByID(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.stages {
		if m.stages[i].ID == id {
			m.stages[i].Active = active
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) FindStageByID(_ context.Context, id string) (types.Stage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, st := range m.stages {
		if st.ID == id {
			return st, nil
		}
	}
	return types.Stage{}, ErrNotFound
}

func (m *Memory) FindStageHistory(_ context.Context, name, uri string) ([]types.Stage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.Stage
	for _, st := range m.stages {
		if st.Name == name && st.URI == uri {
			out = append(out, st)
		}
	}
	return out, nil
}

func (m *Memory) DistinctStageNames(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	names := make([]string, 0, len(m.stages))
	for _, st := range m.stages {
		if _, ok := seen[st.Name]; ok {
			continue
		}
		seen[st.Name] = struct{}{}
		names = append(names, st.Name)
	}
	return names, nil
}

func (m *Memory) Close(context.Context) error {
	return nil
}
