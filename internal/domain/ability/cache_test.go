package ability

import "testing"

func TestMerge_LastFetchWins(t *testing.T) {
	t.Parallel()

	c := NewCache()
	c.Merge(map[string]float64{"p1": 10.5, "p2": 20.0})
	c.Merge(map[string]float64{"p1": 12.0})

	if score, ok := c.Get("p1"); !ok || score != 12.0 {
		t.Fatalf("expected p1=12.0, got %v (known=%v)", score, ok)
	}
	if score, ok := c.Get("p2"); !ok || score != 20.0 {
		t.Fatalf("expected p2 retained at 20.0, got %v (known=%v)", score, ok)
	}
}

func TestSum_UnknownPlayersCountAsZero(t *testing.T) {
	t.Parallel()

	c := NewCacheFrom(map[string]float64{"p1": 10.5, "p2": 20.0})

	if total := c.Sum([]string{"p1", "p2", "p9"}); total != 30.5 {
		t.Fatalf("expected total 30.5, got %v", total)
	}
	if total := c.Sum(nil); total != 0 {
		t.Fatalf("expected empty sum to be zero, got %v", total)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	t.Parallel()

	c := NewCacheFrom(map[string]float64{"p1": 10.5})
	snap := c.Snapshot()
	snap["p1"] = 99.0

	if score, _ := c.Get("p1"); score != 10.5 {
		t.Fatalf("snapshot mutation leaked into cache: %v", score)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	c := NewCacheFrom(map[string]float64{"p1": 10.5, "p2": 20.0})
	c.Clear()

	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Len())
	}
}
