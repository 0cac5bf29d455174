package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStore_SetGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewStore(time.Minute)
	s.Set(ctx, "k", "v")

	got, ok := s.Get(ctx, "k")
	if !ok || got.(string) != "v" {
		t.Fatalf("expected cached value, got %v (ok=%v)", got, ok)
	}

	s.Delete(ctx, "k")
	if _, ok = s.Get(ctx, "k"); ok {
		t.Fatalf("expected value gone after delete")
	}
}

func TestStore_ExpiredEntriesAreEvicted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewStore(10 * time.Millisecond)
	s.Set(ctx, "k", "v")

	time.Sleep(30 * time.Millisecond)
	if _, ok := s.Get(ctx, "k"); ok {
		t.Fatalf("expected entry expired")
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewStore(0)
	s.Set(ctx, "k", "v")

	time.Sleep(20 * time.Millisecond)
	if _, ok := s.Get(ctx, "k"); !ok {
		t.Fatalf("expected entry retained with expiry disabled")
	}
}

func TestGetOrLoad_CachesLoaderResult(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewStore(time.Minute)
	loads := 0
	loader := func(context.Context) (any, error) {
		loads++
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		got, err := s.GetOrLoad(ctx, "k", loader)
		if err != nil {
			t.Fatalf("get or load %d: %v", i, err)
		}
		if got.(int) != 42 {
			t.Fatalf("expected 42, got %v", got)
		}
	}
	if loads != 1 {
		t.Fatalf("expected a single load, got %d", loads)
	}
}

func TestGetOrLoad_LoaderErrorIsNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s := NewStore(time.Minute)
	boom := errors.New("boom")
	calls := 0

	_, err := s.GetOrLoad(ctx, "k", func(context.Context) (any, error) {
		calls++
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}

	got, err := s.GetOrLoad(ctx, "k", func(context.Context) (any, error) {
		calls++
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("get or load after failure: %v", err)
	}
	if got.(string) != "recovered" || calls != 2 {
		t.Fatalf("expected retry after failed load, got %v (calls=%d)", got, calls)
	}
}
