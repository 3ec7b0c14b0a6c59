package rez

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rezforge/launchpad/backend/internal/logging"
	"github.com/rezforge/launchpad/backend/internal/types"
)

// Loader materializes a persisted snapshot as an interactive environment
// by handing it back to the resolver inside a platform terminal.
type Loader struct {
	bin      string
	pool     *Pool
	logger   *logging.Logger
	launcher []string
	tmpDir   string
}

// NewLoader creates a snapshot loader invoking bin.
func NewLoader(bin string, pool *Pool, logger *logging.Logger) *Loader {
	return &Loader{
		bin:    bin,
		pool:   pool,
		logger: logger,
		tmpDir: os.TempDir(),
	}
}

// WithLauncher overrides the platform terminal command prefix. The resolver
// argv is appended to it verbatim.
func (l *Loader) WithLauncher(cmd ...string) *Loader {
	l.launcher = cmd
	return l
}

// Load writes the stage's snapshot to a transient file and spawns the
// resolver in an interactive terminal pointed at it. It returns right
// after a successful spawn: the session is not monitored, and the file is
// intentionally left behind for the session to read.
func (l *Loader) Load(ctx context.Context, stage types.Stage) error {
	if len(stage.Snapshot) == 0 {
		return fmt.Errorf("stage %q: %w", stage.Name, ErrEmptySnapshot)
	}

	return l.pool.Do(ctx, func() error {
		path := l.snapshotPath(stage.Name)
		if err := os.WriteFile(path, stage.Snapshot, 0o644); err != nil {
			return fmt.Errorf("failed to write snapshot file: %w", err)
		}

		cmd := l.launchCommand(path)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("failed to spawn environment terminal: %w", err)
		}

		// Reap the child when it eventually exits; nobody waits on it.
		go func() { _ = cmd.Wait() }()

		l.logger.Info("Environment session spawned",
			zap.String("stage", stage.Name),
			zap.String("uri", stage.URI),
			zap.String("snapshot", path),
			zap.Int("pid", cmd.Process.Pid))
		return nil
	})
}

// launchCommand builds the terminal invocation wrapping `bin env -i path`.
func (l *Loader) launchCommand(path string) *exec.Cmd {
	if len(l.launcher) > 0 {
		argv := append(append([]string{}, l.launcher...), l.bin, "env", "-i", path)
		return exec.Command(argv[0], argv[1:]...)
	}

	switch runtime.GOOS {
	case "windows":
		return exec.Command("cmd", "/C", "start", "", l.bin, "env", "-i", path)
	case "darwin":
		script := fmt.Sprintf("tell application %q to do script %q",
			"Terminal", strings.Join([]string{l.bin, "env", "-i", path}, " "))
		return exec.Command("osascript", "-e", script)
	default:
		return exec.Command("x-terminal-emulator", "-e", l.bin, "env", "-i", path)
	}
}

func (l *Loader) snapshotPath(stageName string) string {
	name := fmt.Sprintf("stage_%s_%s_%s.rxt",
		sanitize(stageName), time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	return filepath.Join(l.tmpDir, name)
}

// sanitize keeps stage names path-safe.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}
