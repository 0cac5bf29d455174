package memory

import (
	"context"
	"sync"
)

// Gateway is an in-memory blob store. State does not survive the process;
// used for tests and for hosts that opt out of durable storage.
type Gateway struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewGateway() *Gateway {
	return &Gateway{blobs: make(map[string][]byte)}
}

func (g *Gateway) Load(_ context.Context, key string) ([]byte, bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	blob, ok := g.blobs[key]
	if !ok {
		return nil, false, nil
	}

	out := make([]byte, len(blob))
	copy(out, blob)
	return out, true, nil
}

func (g *Gateway) Save(_ context.Context, key string, blob []byte) error {
	copied := make([]byte, len(blob))
	copy(copied, blob)

	g.mu.Lock()
	g.blobs[key] = copied
	g.mu.Unlock()
	return nil
}
