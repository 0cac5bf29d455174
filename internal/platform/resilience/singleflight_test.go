package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	var executions atomic.Int64
	release := make(chan struct{})
	leaderIn := make(chan struct{})

	fn := func() (any, error) {
		executions.Add(1)
		close(leaderIn)
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err, _ := g.Do("key", fn); err != nil {
			t.Errorf("leader do: %v", err)
		}
	}()
	<-leaderIn

	// The leader is parked inside fn, so every follower joins its flight.
	const followers = 5
	results := make(chan bool, followers)
	for i := 0; i < followers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			val, err, shared := g.Do("key", func() (any, error) {
				executions.Add(1)
				return "value", nil
			})
			if err != nil {
				t.Errorf("follower do: %v", err)
				return
			}
			if val.(string) != "value" {
				t.Errorf("expected shared value, got %q", val)
			}
			results <- shared
		}()
	}

	// Followers that reached the flight map are blocked on the leader; give
	// the rest the same chance before releasing.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	if got := executions.Load(); got != 1 {
		t.Fatalf("expected one execution, got %d", got)
	}
	for shared := range results {
		if !shared {
			t.Fatalf("expected follower result to be shared")
		}
	}
}

func TestSingleFlight_ErrorsAreShared(t *testing.T) {
	t.Parallel()

	var g SingleFlight
	boom := errors.New("boom")

	_, err, shared := g.Do("key", func() (any, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected leader error, got %v", err)
	}
	if shared {
		t.Fatalf("leader result must not be marked shared")
	}
}

func TestSingleFlight_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	var g SingleFlight

	a, err, _ := g.Do("a", func() (any, error) { return 1, nil })
	if err != nil {
		t.Fatalf("do a: %v", err)
	}
	b, err, _ := g.Do("b", func() (any, error) { return 2, nil })
	if err != nil {
		t.Fatalf("do b: %v", err)
	}

	if a.(int) != 1 || b.(int) != 2 {
		t.Fatalf("expected independent results, got %v and %v", a, b)
	}
}
