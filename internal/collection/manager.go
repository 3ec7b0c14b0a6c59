package collection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rezforge/launchpad/backend/internal/logging"
	"github.com/rezforge/launchpad/backend/internal/storage"
	"github.com/rezforge/launchpad/backend/internal/types"
	"github.com/rezforge/launchpad/backend/internal/user"
)

// Manager handles package collection records. Collections are append-only:
// saved once, queried, never updated or deleted.
type Manager struct {
	gateway storage.Gateway
	logger  *logging.Logger
}

// NewManager creates a collection manager
func NewManager(gateway storage.Gateway, logger *logging.Logger) *Manager {
	return &Manager{gateway: gateway, logger: logger}
}

// Save persists a new collection version.
func (m *Manager) Save(ctx context.Context, req types.SaveCollectionRequest) (types.PackageCollection, error) {
	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = user.Current()
	}

	rec := types.PackageCollection{
		Version:   req.Version,
		Packages:  req.Packages,
		Herit:     req.Herit,
		Tools:     req.Tools,
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
		URI:       req.URI,
	}

	if err := m.gateway.InsertCollection(ctx, rec); err != nil {
		return types.PackageCollection{}, err
	}

	m.logger.Info("Package collection saved",
		zap.String("version", rec.Version), zap.String("uri", rec.URI))
	return rec, nil
}

// List returns collections scoped to uri (all when uri is empty), wrapped
// in the result envelope the shell UI expects.
func (m *Manager) List(ctx context.Context, uri string) (types.CollectionsResult, error) {
	records, err := m.gateway.FindCollections(ctx, uri)
	if err != nil {
		return types.CollectionsResult{}, err
	}

	if len(records) == 0 {
		msg := "no package collections found"
		if uri != "" {
			msg = fmt.Sprintf("no collection found in %s", uri)
		}
		return types.CollectionsResult{Success: true, Message: &msg}, nil
	}

	return types.CollectionsResult{Success: true, Collections: records}, nil
}

// Tools returns the tools exposed by a collection version. A missing
// record is an empty list, not an error.
func (m *Manager) Tools(ctx context.Context, version, uri string) ([]string, error) {
	tools, err := m.gateway.FindCollectionTools(ctx, version, uri)
	if errors.Is(err, storage.ErrNotFound) {
		m.logger.Debug("Collection not found for tools lookup",
			zap.String("version", version), zap.String("uri", uri))
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return tools, nil
}
