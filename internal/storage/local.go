// Package storage stores receipt attachments on local disk and serves
// them back under a configurable base URL.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ncasas/obra-service/internal/config"
)

// Local writes attachment blobs beneath a single directory. Filenames
// are prefixed with a fresh UUID so uploads never collide.
type Local struct {
	dir  string
	base string
}

// NewLocal creates the attachment directory if needed.
func NewLocal(cfg *config.Config) (*Local, error) {
	if err := os.MkdirAll(cfg.AttachmentDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachment dir: %w", err)
	}
	return &Local{dir: cfg.AttachmentDir, base: strings.TrimRight(cfg.AttachmentBase, "/")}, nil
}

// Upload persists the blob and returns its durable URL.
func (l *Local) Upload(_ context.Context, filename string, data []byte) (string, error) {
	name := uuid.New().String() + "-" + filepath.Base(filename)
	if err := os.WriteFile(filepath.Join(l.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}
	return l.base + "/" + name, nil
}

// Dir returns the directory attachments are stored in, for static serving.
func (l *Local) Dir() string { return l.dir }
