package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezforge/launchpad/backend/internal/types"
)

func testCollection(version, uri string) types.PackageCollection {
	return types.PackageCollection{
		Version:   version,
		Packages:  []string{"maya-2025", "arnold-7.3"},
		Herit:     "base",
		Tools:     []string{"maya", "kick"},
		CreatedAt: time.Now(),
		CreatedBy: "tester",
		URI:       uri,
	}
}

func testStage(name, uri, version string, active bool) types.Stage {
	return types.Stage{
		Name:        name,
		URI:         uri,
		FromVersion: version,
		Snapshot:    []byte("{}"),
		Tools:       []string{"maya"},
		CreatedAt:   time.Now(),
		CreatedBy:   "tester",
		Active:      active,
	}
}

func TestMemoryCollections(t *testing.T) {
	ctx := context.Background()
	g := NewMemory()

	require.NoError(t, g.InsertCollection(ctx, testCollection("1.0", "shots/010")))
	require.NoError(t, g.InsertCollection(ctx, testCollection("2.0", "shots/010")))
	require.NoError(t, g.InsertCollection(ctx, testCollection("1.0", "shots/020")))

	t.Run("by uri", func(t *testing.T) {
		recs, err := g.FindCollections(ctx, "shots/010")
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("all", func(t *testing.T) {
		recs, err := g.FindCollections(ctx, "")
		require.NoError(t, err)
		assert.Len(t, recs, 3)
	})

	t.Run("unknown uri is empty, not an error", func(t *testing.T) {
		recs, err := g.FindCollections(ctx, "no/such/uri")
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("duplicate versions are permitted", func(t *testing.T) {
		require.NoError(t, g.InsertCollection(ctx, testCollection("1.0", "shots/010")))
		recs, err := g.FindCollections(ctx, "shots/010")
		require.NoError(t, err)
		assert.Len(t, recs, 3)
	})
}

func TestMemoryCollectionTools(t *testing.T) {
	ctx := context.Background()
	g := NewMemory()
	require.NoError(t, g.InsertCollection(ctx, testCollection("1.0", "shots/010")))

	tools, err := g.FindCollectionTools(ctx, "1.0", "shots/010")
	require.NoError(t, err)
	assert.Equal(t, []string{"maya", "kick"}, tools)

	_, err = g.FindCollectionTools(ctx, "9.9", "no/such/uri")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStages(t *testing.T) {
	ctx := context.Background()
	g := NewMemory()

	s1, err := g.InsertStage(ctx, testStage("prod", "shots/010", "1.0", true))
	require.NoError(t, err)
	require.NotEmpty(t, s1.ID)

	s2, err := g.InsertStage(ctx, testStage("prod", "shots/010", "2.0", false))
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)

	t.Run("find by id", func(t *testing.T) {
		got, err := g.FindStageByID(ctx, s1.ID)
		require.NoError(t, err)
		assert.Equal(t, "prod", got.Name)
		assert.True(t, got.Active)
	})

	t.Run("find by id miss", func(t *testing.T) {
		_, err := g.FindStageByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("active only filter", func(t *testing.T) {
		all, err := g.FindStages(ctx, "shots/010", false)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		active, err := g.FindStages(ctx, "shots/010", true)
		require.NoError(t, err)
		assert.Len(t, active, 1)
		assert.Equal(t, s1.ID, active[0].ID)
	})

	t.Run("bulk deactivate", func(t *testing.T) {
		require.NoError(t, g.SetStagesActive(ctx, "prod", "shots/010", false))
		active, err := g.FindStages(ctx, "shots/010", true)
		require.NoError(t, err)
		assert.Empty(t, active)
	})

	t.Run("bulk update on zero matches succeeds", func(t *testing.T) {
		assert.NoError(t, g.SetStagesActive(ctx, "nobody", "nowhere", false))
	})

	t.Run("activate by id", func(t *testing.T) {
		require.NoError(t, g.SetStageActiveByID(ctx, s2.ID, true))
		got, err := g.FindStageByID(ctx, s2.ID)
		require.NoError(t, err)
		assert.True(t, got.Active)
	})

	t.Run("history returns all versions under the key", func(t *testing.T) {
		_, err := g.InsertStage(ctx, testStage("prod", "shots/010", "3.0", false))
		require.NoError(t, err)

		hist, err := g.FindStageHistory(ctx, "prod", "shots/010")
		require.NoError(t, err)
		assert.Len(t, hist, 3)
		for _, st := range hist {
			assert.Equal(t, "prod", st.Name)
			assert.Equal(t, "shots/010", st.URI)
		}
	})
}

func TestMemoryDistinctStageNames(t *testing.T) {
	ctx := context.Background()
	g := NewMemory()

	t.Run("empty set", func(t *testing.T) {
		names, err := g.DistinctStageNames(ctx)
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("deduplicates", func(t *testing.T) {
		for _, name := range []string{"A", "B", "A"} {
			_, err := g.InsertStage(ctx, testStage(name, "shots/010", "1.0", false))
			require.NoError(t, err)
		}
		names, err := g.DistinctStageNames(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"A", "B"}, names)
	})
}
