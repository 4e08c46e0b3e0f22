package memory

import (
	"context"

	"github.com/dtroode/connectflow/internal/model"
)

var _ model.Gateway = (*Gateway)(nil)

// Gateway is a map-backed persistence gateway, the default for tests and
// throwaway runs.
type Gateway struct {
	snapshots map[string][]byte
}

func New() *Gateway {
	return &Gateway{snapshots: make(map[string][]byte)}
}

func (g *Gateway) Load(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok := g.snapshots[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (g *Gateway) Save(ctx context.Context, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	g.snapshots[key] = stored
	return nil
}

func (g *Gateway) Delete(ctx context.Context, key string) error {
	delete(g.snapshots, key)
	return nil
}
