package sqlstore

import (
	"context"
	"testing"
)

func TestGateway_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()

	g, err := Open(ctx, DriverSQLite, t.TempDir()+"/state.db")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer g.Close()

	if _, ok, err := g.Load(ctx, "lineups"); err != nil || ok {
		t.Fatalf("expected absent blob, got ok=%v err=%v", ok, err)
	}

	if err = g.Save(ctx, "lineups", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	blob, ok, err := g.Load(ctx, "lineups")
	if err != nil || !ok || string(blob) != `{"v":1}` {
		t.Fatalf("unexpected load result %q ok=%v err=%v", blob, ok, err)
	}

	// Saving again must replace, not duplicate.
	if err = g.Save(ctx, "lineups", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("resave: %v", err)
	}
	blob, _, err = g.Load(ctx, "lineups")
	if err != nil || string(blob) != `{"v":2}` {
		t.Fatalf("expected upserted blob, got %q err=%v", blob, err)
	}
}

func TestGateway_MigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := t.TempDir() + "/state.db"

	g, err := Open(ctx, DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err = g.Save(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("save: %v", err)
	}
	g.Close()

	g, err = Open(ctx, DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer g.Close()

	blob, ok, err := g.Load(ctx, "k")
	if err != nil || !ok || string(blob) != "v" {
		t.Fatalf("expected state to survive reopen, got %q ok=%v err=%v", blob, ok, err)
	}
}
