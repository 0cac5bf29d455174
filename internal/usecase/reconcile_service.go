package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/nba-lineups/internal/domain/ability"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

// ReconcileState tracks one lineup's reconciliation attempt:
// Idle -> Fetching -> {Applied | Discarded | Failed}.
type ReconcileState string

const (
	ReconcileIdle      ReconcileState = "idle"
	ReconcileFetching  ReconcileState = "fetching"
	ReconcileApplied   ReconcileState = "applied"
	ReconcileDiscarded ReconcileState = "discarded"
	ReconcileFailed    ReconcileState = "failed"
)

// ReconcileOutcome is delivered to the listener when a fetch completes.
type ReconcileOutcome struct {
	LineupID int
	State    ReconcileState
	Err      error
}

// lineupAnnotator is what the reconciler needs from the lineup store.
type lineupAnnotator interface {
	Snapshot(id int) ([]string, bool)
	ApplyIfCurrent(ctx context.Context, id int, snapshot []string, scores map[string]float64) (bool, error)
	PersistAbilities(ctx context.Context) error
}

// Reconciler keeps lineup ability annotations in sync with the provider.
// Every roster commit issues one fetch carrying the roster's PersonIDs; the
// completion handler merges the scores into the process-wide cache and then
// annotates the lineup only when its roster still matches the snapshot
// captured at issue time. A response that lost that race is discarded for
// display but still feeds the cache, since scores stay useful across lineups.
//
// Fetches run on a bounded worker pool. The transport is never aborted:
// superseded requests are ignored on completion, per the snapshot check.
type Reconciler struct {
	provider AbilityProvider
	store    lineupAnnotator
	cache    *ability.Cache
	pool     *ants.Pool
	logger   *logging.Logger

	tasks sync.WaitGroup

	mu       sync.Mutex
	seq      map[int]uint64
	states   map[int]ReconcileState
	listener func(ReconcileOutcome)
	closed   bool
}

func NewReconciler(provider AbilityProvider, store lineupAnnotator, cache *ability.Cache, workers int, logger *logging.Logger) (*Reconciler, error) {
	if provider == nil {
		return nil, fmt.Errorf("ability provider is required")
	}
	if store == nil {
		return nil, fmt.Errorf("lineup store is required")
	}
	if cache == nil {
		cache = ability.NewCache()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = 4
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create reconcile worker pool: %w", err)
	}

	return &Reconciler{
		provider: provider,
		store:    store,
		cache:    cache,
		pool:     pool,
		logger:   logger,
		seq:      make(map[int]uint64),
		states:   make(map[int]ReconcileState),
	}, nil
}

// SetListener registers the completion handler. Outcomes are delivered from
// worker goroutines, after all store and cache mutations for the attempt.
func (r *Reconciler) SetListener(fn func(ReconcileOutcome)) {
	r.mu.Lock()
	r.listener = fn
	r.mu.Unlock()
}

// RosterCommitted reacts to a committed roster change. An empty roster resets
// the lineup to Idle; anything else supersedes whatever fetch may still be in
// flight for this lineup and issues a new one.
func (r *Reconciler) RosterCommitted(ctx context.Context, lineupID int) {
	snapshot, ok := r.store.Snapshot(lineupID)
	if !ok || len(snapshot) == 0 {
		r.mu.Lock()
		r.states[lineupID] = ReconcileIdle
		r.mu.Unlock()
		return
	}
	r.trigger(ctx, lineupID, snapshot)
}

// Refresh re-fetches abilities for a lineup's current roster on user request.
// It is rejected while a fetch for this lineup is in flight and is a no-op
// success on an empty roster.
func (r *Reconciler) Refresh(ctx context.Context, lineupID int) error {
	snapshot, ok := r.store.Snapshot(lineupID)
	if !ok {
		return fmt.Errorf("%w: lineup=%d", ErrNotFound, lineupID)
	}
	if len(snapshot) == 0 {
		return nil
	}

	r.mu.Lock()
	if r.states[lineupID] == ReconcileFetching {
		r.mu.Unlock()
		return fmt.Errorf("%w: lineup=%d", ErrFetchInFlight, lineupID)
	}
	r.mu.Unlock()

	r.trigger(ctx, lineupID, snapshot)
	return nil
}

// State reports the lineup's current reconciliation state.
func (r *Reconciler) State(lineupID int) ReconcileState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state, ok := r.states[lineupID]; ok {
		return state
	}
	return ReconcileIdle
}

// LineupRemoved drops bookkeeping for a deleted lineup. Any in-flight fetch
// for it completes as Discarded.
func (r *Reconciler) LineupRemoved(lineupID int) {
	r.mu.Lock()
	delete(r.seq, lineupID)
	delete(r.states, lineupID)
	r.mu.Unlock()
}

// Close drains in-flight fetches and releases the worker pool.
func (r *Reconciler) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.tasks.Wait()
	r.pool.Release()
}

func (r *Reconciler) trigger(ctx context.Context, lineupID int, snapshot []string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.seq[lineupID]++
	attempt := r.seq[lineupID]
	r.states[lineupID] = ReconcileFetching
	r.mu.Unlock()

	// The fetch outlives the committing call; keep trace context, drop
	// cancellation.
	fetchCtx := context.WithoutCancel(ctx)

	r.tasks.Add(1)
	if err := r.pool.Submit(func() {
		defer r.tasks.Done()
		r.run(fetchCtx, lineupID, attempt, snapshot)
	}); err != nil {
		r.tasks.Done()
		r.finish(ctx, lineupID, attempt, ReconcileFailed, fmt.Errorf("%w: submit fetch: %v", ErrFetchFailure, err))
	}
}

func (r *Reconciler) run(ctx context.Context, lineupID int, attempt uint64, snapshot []string) {
	scores, err := r.provider.FetchAbilities(ctx, snapshot)
	if err != nil {
		r.finish(ctx, lineupID, attempt, ReconcileFailed, fmt.Errorf("%w: %v", ErrFetchFailure, err))
		return
	}

	// Stale or not, the scores are globally useful.
	r.cache.Merge(scores)
	if persistErr := r.store.PersistAbilities(ctx); persistErr != nil {
		r.logger.WarnContext(ctx, "ability cache persist failed", "lineup_id", lineupID, "error", persistErr)
	}

	applied, applyErr := r.store.ApplyIfCurrent(ctx, lineupID, snapshot, scores)
	state := ReconcileApplied
	if !applied {
		state = ReconcileDiscarded
	}
	r.finish(ctx, lineupID, attempt, state, applyErr)
}

func (r *Reconciler) finish(ctx context.Context, lineupID int, attempt uint64, state ReconcileState, err error) {
	r.mu.Lock()
	// Only the most recent attempt moves the lineup's state; a superseded
	// fetch must not clobber the newer one's Fetching.
	if r.seq[lineupID] == attempt {
		r.states[lineupID] = state
	}
	listener := r.listener
	r.mu.Unlock()

	switch state {
	case ReconcileFailed:
		r.logger.WarnContext(ctx, "ability reconciliation failed", "lineup_id", lineupID, "error", err)
	case ReconcileDiscarded:
		r.logger.InfoContext(ctx, "stale ability response discarded", "lineup_id", lineupID)
	default:
		r.logger.DebugContext(ctx, "ability reconciliation applied", "lineup_id", lineupID)
	}

	if listener != nil {
		listener(ReconcileOutcome{LineupID: lineupID, State: state, Err: err})
	}
}
