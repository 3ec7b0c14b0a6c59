package stage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rezforge/launchpad/backend/internal/logging"
	"github.com/rezforge/launchpad/backend/internal/monitoring"
	"github.com/rezforge/launchpad/backend/internal/storage"
	"github.com/rezforge/launchpad/backend/internal/types"
	"github.com/rezforge/launchpad/backend/internal/user"
)

// Generator interface for snapshot generation, for dependency injection
type Generator interface {
	Generate(ctx context.Context, packages []string) ([]byte, error)
}

// Loader interface for materializing snapshots
type Loader interface {
	Load(ctx context.Context, stage types.Stage) error
}

// Publisher broadcasts lifecycle events to stream subscribers
type Publisher interface {
	Publish(evt types.Event)
}

// Manager orchestrates the stage lifecycle. It owns the single-active
// invariant: for any (name, uri) pair at most one stage is active, enforced
// by an ordered deactivate-then-activate write sequence. Mutations sharing
// a (name, uri) key are serialized with a keyed lock so concurrent saves
// and reverts cannot interleave the two steps; the underlying store still
// sees two separate writes, so a crash between them can leave a key with
// zero active stages until the next save or revert.
type Manager struct {
	gateway   storage.Gateway
	generator Generator
	loader    Loader
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	publisher Publisher

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per (name, uri) key
}

// NewManager creates a stage lifecycle manager
func NewManager(gateway storage.Gateway, generator Generator, loader Loader, logger *logging.Logger) *Manager {
	return &Manager{
		gateway:   gateway,
		generator: generator,
		loader:    loader,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithPublisher adds lifecycle event broadcasting to the manager
func (m *Manager) WithPublisher(p Publisher) *Manager {
	m.publisher = p
	return m
}

// Save creates a new stage version and promotes it to active.
//
// Ordering is strict: resolve the source collection, generate the
// snapshot, deactivate all (name, uri) siblings, insert the new record
// already active. A failure at any step stops the pipeline there with no
// rollback; the resolve and generate steps complete before any write, so
// their failures leave storage untouched.
func (m *Manager) Save(ctx context.Context, req types.SaveStageRequest) (types.Stage, error) {
	source, err := m.resolveCollection(ctx, req.FromVersion, req.URI)
	if err != nil {
		return types.Stage{}, err
	}

	start := time.Now()
	snapshot, err := m.generator.Generate(ctx, source.Packages)
	if m.metrics != nil {
		m.metrics.ObserveSnapshot(time.Since(start), err)
	}
	if err != nil {
		m.logger.Error("Snapshot generation failed",
			zap.String("name", req.Name), zap.String("uri", req.URI), zap.Error(err))
		return types.Stage{}, err
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = user.Current()
	}

	st := types.Stage{
		Name:        req.Name,
		URI:         req.URI,
		FromVersion: req.FromVersion,
		Snapshot:    snapshot,
		Tools:       source.Tools,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   createdBy,
		Active:      true,
	}

	unlock := m.lockKey(st.Key())
	defer unlock()

	if err := m.gateway.SetStagesActive(ctx, req.Name, req.URI, false); err != nil {
		m.storageError("set_stages_active")
		return types.Stage{}, err
	}

	saved, err := m.gateway.InsertStage(ctx, st)
	if err != nil {
		m.storageError("insert_stage")
		return types.Stage{}, err
	}

	m.logger.Info("Stage saved",
		zap.String("id", saved.ID),
		zap.String("name", saved.Name),
		zap.String("uri", saved.URI),
		zap.String("from_version", saved.FromVersion))

	if m.metrics != nil {
		m.metrics.StagesSaved.Inc()
	}
	m.publish(types.Event{
		Type: "stage.saved", Name: saved.Name, URI: saved.URI,
		Stage: saved.ID, At: time.Now().Unix(),
	})

	return saved, nil
}

// Revert promotes a historical stage version back to active.
func (m *Manager) Revert(ctx context.Context, stageID string) (types.Stage, error) {
	target, err := m.gateway.FindStageByID(ctx, stageID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.storageError("find_stage_by_id")
		}
		return types.Stage{}, err
	}

	unlock := m.lockKey(target.Key())
	defer unlock()

	if err := m.gateway.SetStagesActive(ctx, target.Name, target.URI, false); err != nil {
		m.storageError("set_stages_active")
		return types.Stage{}, err
	}

	if err := m.gateway.SetStageActiveByID(ctx, stageID, true); err != nil {
		m.storageError("set_stage_active_by_id")
		return types.Stage{}, err
	}

	target.Active = true
	m.logger.Info("Stage reverted",
		zap.String("id", stageID),
		zap.String("name", target.Name),
		zap.String("uri", target.URI))

	if m.metrics != nil {
		m.metrics.StagesReverted.Inc()
	}
	m.publish(types.Event{
		Type: "stage.reverted", Name: target.Name, URI: target.URI,
		Stage: stageID, At: time.Now().Unix(),
	})

	return target, nil
}

// List returns stages scoped to uri, optionally only the active ones.
func (m *Manager) List(ctx context.Context, uri string, activeOnly bool) ([]types.Stage, error) {
	stages, err := m.gateway.FindStages(ctx, uri, activeOnly)
	if err != nil {
		m.storageError("find_stages")
		return nil, err
	}
	return stages, nil
}

// History returns every version under (name, uri) in storage order.
// Callers needing chronological order sort on CreatedAt.
func (m *Manager) History(ctx context.Context, name, uri string) ([]types.Stage, error) {
	stages, err := m.gateway.FindStageHistory(ctx, name, uri)
	if err != nil {
		m.storageError("find_stage_history")
		return nil, err
	}
	return stages, nil
}

// DistinctNames returns the deduplicated set of all stage names.
func (m *Manager) DistinctNames(ctx context.Context) ([]string, error) {
	names, err := m.gateway.DistinctStageNames(ctx)
	if err != nil {
		m.storageError("distinct_stage_names")
		return nil, err
	}
	return names, nil
}

// Load materializes a stage's snapshot as an interactive environment.
func (m *Manager) Load(ctx context.Context, stageID string) error {
	st, err := m.gateway.FindStageByID(ctx, stageID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			m.storageError("find_stage_by_id")
		}
		return err
	}

	if err := m.loader.Load(ctx, st); err != nil {
		return err
	}

	if m.metrics != nil {
		m.metrics.StagesLoaded.Inc()
	}
	m.publish(types.Event{
		Type: "stage.loaded", Name: st.Name, URI: st.URI,
		Stage: st.ID, At: time.Now().Unix(),
	})
	return nil
}

// resolveCollection finds the source collection for a save, before any
// mutation happens.
func (m *Manager) resolveCollection(ctx context.Context, version, uri string) (types.PackageCollection, error) {
	records, err := m.gateway.FindCollections(ctx, uri)
	if err != nil {
		m.storageError("find_collections")
		return types.PackageCollection{}, err
	}
	for _, rec := range records {
		if rec.Version == version {
			return rec, nil
		}
	}
	return types.PackageCollection{}, fmt.Errorf(
		"collection version %q under %q: %w", version, uri, storage.ErrNotFound)
}

// lockKey serializes mutations per (name, uri) key. Lock entries are never
// removed; the key space is small (one per stage name per scope).
func (m *Manager) lockKey(key string) func() {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (m *Manager) publish(evt types.Event) {
	if m.publisher != nil {
		m.publisher.Publish(evt)
	}
}

func (m *Manager) storageError(op string) {
	if m.metrics != nil {
		m.metrics.StorageErrors.WithLabelValues(op).Inc()
	}
}
