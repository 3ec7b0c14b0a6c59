package rez

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rezforge/launchpad/backend/internal/logging"
)

// Generator produces environment snapshots by running the external
// resolver against a package list and capturing its output file.
type Generator struct {
	bin    string
	pool   *Pool
	logger *logging.Logger
	tmpDir string
}

// NewGenerator creates a snapshot generator invoking bin.
func NewGenerator(bin string, pool *Pool, logger *logging.Logger) *Generator {
	return &Generator{
		bin:    bin,
		pool:   pool,
		logger: logger,
		tmpDir: os.TempDir(),
	}
}

// Generate resolves packages into a snapshot blob.
//
// The resolver writes to a uniquely named temporary file which is deleted
// unconditionally once its content is in memory; deletion failure is
// logged, never fatal. A non-zero exit yields a *GenerationError carrying
// the resolver's stderr, and nothing else is touched.
func (g *Generator) Generate(ctx context.Context, packages []string) ([]byte, error) {
	outPath := g.tempPath()

	args := make([]string, 0, len(packages)+3)
	args = append(args, "env")
	args = append(args, packages...)
	args = append(args, "-o", outPath)

	var blob []byte
	err := g.pool.Do(ctx, func() error {
		defer func() {
			if err := os.Remove(outPath); err != nil && !os.IsNotExist(err) {
				g.logger.Warn("Failed to remove temporary snapshot file",
					zap.String("path", outPath), zap.Error(err))
			}
		}()

		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, g.bin, args...)
		cmd.Stderr = &stderr

		g.logger.Debug("Invoking resolver",
			zap.Strings("packages", packages), zap.String("output", outPath))

		if err := cmd.Run(); err != nil {
			return &GenerationError{Stderr: stderr.String(), Err: err}
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			return &GenerationError{Err: fmt.Errorf("resolver output unreadable: %w", err)}
		}
		blob = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("Snapshot generated",
		zap.Int("packages", len(packages)), zap.Int("bytes", len(blob)))
	return blob, nil
}

// tempPath allocates a collision-safe output path: timestamp plus random
// suffix so concurrent generations never share a file.
func (g *Generator) tempPath() string {
	name := fmt.Sprintf("resolve_%s_%s.rxt",
		time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	return filepath.Join(g.tmpDir, name)
}
