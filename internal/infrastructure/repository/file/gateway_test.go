package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestGateway_SaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g, err := NewGateway(t.TempDir())
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	want := []byte(`{"lineups":[]}`)
	if err = g.Save(ctx, "lineups", want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := g.Load(ctx, "lineups")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected blob present")
	}
	if string(got) != string(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestGateway_MissingKeyIsAbsentNotError(t *testing.T) {
	t.Parallel()

	g, err := NewGateway(t.TempDir())
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	blob, ok, err := g.Load(context.Background(), "never_saved")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok || blob != nil {
		t.Fatalf("expected absent blob, got %q (ok=%v)", blob, ok)
	}
}

func TestGateway_RejectsPathTraversalKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	g, err := NewGateway(t.TempDir())
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}

	for _, key := range []string{"", "  ", "../escape", `a\b`} {
		if err := g.Save(ctx, key, []byte("x")); err == nil {
			t.Fatalf("expected save rejected for key %q", key)
		}
		if _, _, err := g.Load(ctx, key); err == nil {
			t.Fatalf("expected load rejected for key %q", key)
		}
	}
}

func TestGateway_SaveLeavesNoTempFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	g, err := NewGateway(dir)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	if err = g.Save(context.Background(), "lineups", []byte("{}")); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err = os.Stat(filepath.Join(dir, "lineups.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("expected temp file cleaned up, stat err %v", err)
	}
	if _, err = os.Stat(filepath.Join(dir, "lineups.json")); err != nil {
		t.Fatalf("expected committed file, stat err %v", err)
	}
}
