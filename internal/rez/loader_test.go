package rez

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezforge/launchpad/backend/internal/logging"
	"github.com/rezforge/launchpad/backend/internal/types"
)

func TestLoadEmptySnapshot(t *testing.T) {
	l := NewLoader("rez", NewPool(1), logging.NewNop())

	err := l.Load(context.Background(), types.Stage{Name: "prod"})
	assert.ErrorIs(t, err, ErrEmptySnapshot)
}

func TestLoadSpawnsSession(t *testing.T) {
	// Launcher stub records its argv instead of opening a terminal.
	argFile := filepath.Join(t.TempDir(), "argv")
	launcher := filepath.Join(t.TempDir(), "launcher")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argFile + "\n"
	require.NoError(t, os.WriteFile(launcher, []byte(script), 0o755))

	l := NewLoader("rez", NewPool(1), logging.NewNop()).WithLauncher(launcher)
	l.tmpDir = t.TempDir()

	blob := []byte("context:\n  packages: [maya-2025]\n")
	stage := types.Stage{Name: "prod", URI: "shots/010", Snapshot: blob}

	require.NoError(t, l.Load(context.Background(), stage))

	// Load returns after spawn; the stub may still be writing.
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(argFile)
		return err == nil && len(data) > 0
	}, 2*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(argFile)
	require.NoError(t, err)
	args := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, args, 4)
	assert.Equal(t, []string{"rez", "env", "-i"}, args[:3])

	// The snapshot file is byte-identical to the stored blob and is left
	// in place for the spawned session.
	written, err := os.ReadFile(args[3])
	require.NoError(t, err)
	assert.Equal(t, blob, written)
}

func TestLoadSpawnFailure(t *testing.T) {
	l := NewLoader("rez", NewPool(1), logging.NewNop()).
		WithLauncher(filepath.Join(t.TempDir(), "does-not-exist"))
	l.tmpDir = t.TempDir()

	err := l.Load(context.Background(), types.Stage{
		Name:     "prod",
		Snapshot: []byte("x"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to spawn")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "prod", sanitize("prod"))
	assert.Equal(t, "shots_010_comp", sanitize("shots/010 comp"))
	assert.Equal(t, "v1.2-rc_3", sanitize("v1.2-rc_3"))
}
