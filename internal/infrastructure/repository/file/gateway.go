package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/valyala/bytebufferpool"
)

// Gateway stores each blob as one JSON file under a directory. Writes go to a
// temp file first and are renamed into place, so a Load never observes a
// partial Save.
type Gateway struct {
	mu  sync.Mutex
	dir string
}

func NewGateway(dir string) (*Gateway, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	return &Gateway{dir: dir}, nil
}

func (g *Gateway) Load(_ context.Context, key string) ([]byte, bool, error) {
	path, err := g.path(key)
	if err != nil {
		return nil, false, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	blob, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read blob %s: %w", key, err)
	}
	return blob, true, nil
}

func (g *Gateway) Save(_ context.Context, key string, blob []byte) error {
	path, err := g.path(key)
	if err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.Write(blob) //nolint:errcheck // ByteBuffer writes cannot fail

	g.mu.Lock()
	defer g.mu.Unlock()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit blob %s: %w", key, err)
	}
	return nil
}

func (g *Gateway) path(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(g.dir, key+".json"), nil
}
