package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dtroode/connectflow/internal/model"
)

var _ model.Gateway = (*Gateway)(nil)

// Gateway persists each snapshot key as one JSON file under a data
// directory, overwritten wholesale on save.
type Gateway struct {
	dir string
}

func New(dir string) (*Gateway, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Gateway{dir: dir}, nil
}

func (g *Gateway) path(key string) string {
	return filepath.Join(g.dir, key+".json")
}

func (g *Gateway) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(g.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	return data, true, nil
}

func (g *Gateway) Save(ctx context.Context, key string, data []byte) error {
	if err := os.WriteFile(g.path(key), data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", key, err)
	}
	return nil
}

func (g *Gateway) Delete(ctx context.Context, key string) error {
	if err := os.Remove(g.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot %s: %w", key, err)
	}
	return nil
}
