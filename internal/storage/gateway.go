package storage

import (
	"context"
	"errors"

	"github.com/rezforge/launchpad/backend/internal/types"
)

// ErrNotFound indicates a lookup matched no record. Callers decide whether
// absence is an error (id lookups) or an empty result (tools lookups).
var ErrNotFound = errors.New("not found")

// Gateway abstracts storage of package collections and stages. It owns no
// business rules: uniqueness of collection versions is not enforced here,
// and bulk active-flag updates succeed on zero matches.
//
// Every operation is independently fallible and surfaces the underlying
// storage failure verbatim; none retries internally.
type Gateway interface {
	// FindCollections returns collections scoped to uri; empty uri returns all.
	FindCollections(ctx context.Context, uri string) ([]types.PackageCollection, error)
	InsertCollection(ctx context.Context, rec types.PackageCollection) error
	// FindCollectionTools returns ErrNotFound when no record matches.
	FindCollectionTools(ctx context.Context, version, uri string) ([]string, error)

	FindStages(ctx context.Context, uri string, activeOnly bool) ([]types.Stage, error)
	// InsertStage stores st and returns it with its storage-assigned ID.
	InsertStage(ctx context.Context, st types.Stage) (types.Stage, error)
	// SetStagesActive flips the active flag on every stage sharing (name, uri).
	SetStagesActive(ctx context.Context, name, uri string, active bool) error
	SetStageActiveByID(ctx context.Context, id string, active bool) error
	// FindStageByID returns ErrNotFound when id matches no stage.
	FindStageByID(ctx context.Context, id string) (types.Stage, error)
	// FindStageHistory returns all versions for (name, uri) in storage order.
	FindStageHistory(ctx context.Context, name, uri string) ([]types.Stage, error)
	// DistinctStageNames returns deduplicated stage names; non-string stored
	// values are dropped, not fatal.
	DistinctStageNames(ctx context.Context) ([]string, error)

	Close(ctx context.Context) error
}
