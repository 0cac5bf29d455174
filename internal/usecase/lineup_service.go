package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/riskibarqy/nba-lineups/internal/domain/ability"
	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/domain/player"
	"github.com/riskibarqy/nba-lineups/internal/domain/selection"
	"github.com/riskibarqy/nba-lineups/internal/domain/storage"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

// rosterReconciler is what the lineup store needs from the reconciliation
// engine; wired after construction to break the mutual dependency.
type rosterReconciler interface {
	RosterCommitted(ctx context.Context, lineupID int)
	LineupRemoved(lineupID int)
}

// LineupService owns the lineup collection and the active lineup pointer.
// All mutations run under one mutex and persist the updated collection
// through the gateway before returning, so at most zero completed operations
// ever separate the persisted state from the in-memory one. A persistence
// failure is returned to the caller but does not roll the mutation back: the
// in-memory state stays the source of truth and the next successful save
// rewrites the full state.
type LineupService struct {
	mu         sync.Mutex
	lineups    []lineup.Lineup
	activeID   int
	gateway    storage.Gateway
	cache      *ability.Cache
	reconciler rosterReconciler
	logger     *logging.Logger
}

func NewLineupService(gateway storage.Gateway, cache *ability.Cache, logger *logging.Logger) *LineupService {
	if logger == nil {
		logger = logging.Default()
	}
	if cache == nil {
		cache = ability.NewCache()
	}

	return &LineupService{
		lineups:  []lineup.Lineup{lineup.New(1)},
		activeID: 1,
		gateway:  gateway,
		cache:    cache,
		logger:   logger,
	}
}

// SetReconciler wires the reconciliation engine. Must be called before the
// first roster commit.
func (s *LineupService) SetReconciler(r rosterReconciler) {
	s.mu.Lock()
	s.reconciler = r
	s.mu.Unlock()
}

// Restore loads the persisted collection, active pointer and ability cache.
// Missing or unreadable blobs fall back to the defaults: a single empty
// lineup with id 1, active, and an empty cache.
func (s *LineupService) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok, err := s.gateway.Load(ctx, storage.KeyLineups)
	if err != nil {
		return fmt.Errorf("load lineups: %w", err)
	}
	if ok {
		items, decodeErr := decodeLineups(blob)
		if decodeErr != nil {
			s.logger.WarnContext(ctx, "discarding unreadable lineup state", "error", decodeErr)
		} else if len(items) > 0 {
			if len(items) > lineup.MaxLineups {
				items = items[:lineup.MaxLineups]
			}
			s.lineups = items
			s.activeID = items[0].ID
		}
	}

	blob, ok, err = s.gateway.Load(ctx, storage.KeyCurrentLineupID)
	if err != nil {
		return fmt.Errorf("load active lineup id: %w", err)
	}
	if ok {
		if id, decodeErr := decodeActiveID(blob); decodeErr == nil {
			if _, found := s.indexOfLocked(id); found {
				s.activeID = id
			}
		}
	}

	blob, ok, err = s.gateway.Load(ctx, storage.KeyPlayerAbilities)
	if err != nil {
		return fmt.Errorf("load ability cache: %w", err)
	}
	if ok {
		if scores, decodeErr := decodeAbilities(blob); decodeErr == nil {
			s.cache.Merge(scores)
		}
	}

	return nil
}

// CreateLineup appends an empty lineup with an identifier above every
// existing one, sets it active and persists. Fails with ErrCapacityExceeded
// at the collection limit.
func (s *LineupService) CreateLineup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lineups) >= lineup.MaxLineups {
		return 0, fmt.Errorf("%w: at most %d lineups", ErrCapacityExceeded, lineup.MaxLineups)
	}

	id := 0
	for _, item := range s.lineups {
		if item.ID > id {
			id = item.ID
		}
	}
	id++

	s.lineups = append(s.lineups, lineup.New(id))
	s.activeID = id

	return id, s.persistLocked(ctx)
}

// DeleteLineup removes a lineup. The sole remaining lineup cannot be deleted.
// When the removed lineup was active, the first remaining lineup in
// collection order becomes active.
func (s *LineupService) DeleteLineup(ctx context.Context, id int) error {
	s.mu.Lock()

	if len(s.lineups) <= 1 {
		s.mu.Unlock()
		return ErrLastLineup
	}
	idx, found := s.indexOfLocked(id)
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("%w: lineup=%d", ErrNotFound, id)
	}

	s.lineups = append(s.lineups[:idx], s.lineups[idx+1:]...)
	if s.activeID == id {
		s.activeID = s.lineups[0].ID
	}
	reconciler := s.reconciler
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	if reconciler != nil {
		reconciler.LineupRemoved(id)
	}
	return err
}

// SetActiveLineup moves the active pointer.
func (s *LineupService) SetActiveLineup(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.indexOfLocked(id); !found {
		return fmt.Errorf("%w: lineup=%d", ErrNotFound, id)
	}
	s.activeID = id

	return s.persistLocked(ctx)
}

// RenameLineup assigns a user-chosen name, replacing the derived default.
func (s *LineupService) RenameLineup(ctx context.Context, id int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: lineup name is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, found := s.indexOfLocked(id)
	if !found {
		return fmt.Errorf("%w: lineup=%d", ErrNotFound, id)
	}
	s.lineups[idx].Name = name

	return s.persistLocked(ctx)
}

// CommitRoster replaces the target lineup's roster. Input is deduplicated by
// first PersonID occurrence and truncated to the slot count; remaining slots
// stay empty. Once the mutation has been persisted the reconciler is
// notified: a non-empty roster triggers an ability fetch, an empty one resets
// the lineup to idle.
func (s *LineupService) CommitRoster(ctx context.Context, id int, players []player.Player) error {
	for _, p := range players {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	s.mu.Lock()
	idx, found := s.indexOfLocked(id)
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("%w: lineup=%d", ErrNotFound, id)
	}

	s.lineups[idx].SetRoster(players)
	reconciler := s.reconciler
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if reconciler != nil {
		reconciler.RosterCommitted(ctx, id)
	}
	return nil
}

// OpenSelection starts a draft session seeded from the active lineup's
// non-empty slots.
func (s *LineupService) OpenSelection() *selection.Session {
	active := s.ActiveLineup()

	seed := make([]player.Player, 0, lineup.RosterSize)
	for _, slot := range active.Players {
		if slot != nil {
			seed = append(seed, *slot)
		}
	}
	return selection.Open(seed, lineup.RosterSize)
}

// Lineups returns a deep copy of the collection in creation order.
func (s *LineupService) Lineups() []lineup.Lineup {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]lineup.Lineup, 0, len(s.lineups))
	for _, item := range s.lineups {
		out = append(out, item.Clone())
	}
	return out
}

// ActiveLineup returns a copy of the active lineup.
func (s *LineupService) ActiveLineup() lineup.Lineup {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, found := s.indexOfLocked(s.activeID); found {
		return s.lineups[idx].Clone()
	}
	return s.lineups[0].Clone()
}

func (s *LineupService) ActiveLineupID() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeID
}

// Snapshot returns the ordered PersonIDs of a lineup's current roster.
func (s *LineupService) Snapshot(id int) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, found := s.indexOfLocked(id)
	if !found {
		return nil, false
	}
	return s.lineups[idx].RosterIDs(), true
}

// TotalAbility sums the cached score of every non-empty slot, treating
// unknown players as zero.
func (s *LineupService) TotalAbility(id int) (float64, error) {
	ids, found := s.Snapshot(id)
	if !found {
		return 0, fmt.Errorf("%w: lineup=%d", ErrNotFound, id)
	}
	return s.cache.Sum(ids), nil
}

// ApplyIfCurrent annotates a lineup's slots with freshly merged scores, but
// only when the roster still matches the snapshot captured at fetch time. A
// mismatch means the response is stale for display and is not applied. The
// staleness check and the annotation happen under the store mutex, so a
// concurrent commit can never interleave.
func (s *LineupService) ApplyIfCurrent(ctx context.Context, id int, snapshot []string, scores map[string]float64) (bool, error) {
	s.mu.Lock()

	idx, found := s.indexOfLocked(id)
	if !found || !equalSnapshots(s.lineups[idx].RosterIDs(), snapshot) {
		s.mu.Unlock()
		return false, nil
	}

	for _, slot := range s.lineups[idx].Players {
		if slot == nil {
			continue
		}
		if score, ok := scores[slot.PersonID]; ok {
			value := score
			slot.Ability = &value
		}
	}
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	return true, err
}

// PersistAbilities writes the current ability cache snapshot.
func (s *LineupService) PersistAbilities(ctx context.Context) error {
	blob, err := encodeAbilities(s.cache.Snapshot())
	if err != nil {
		return err
	}
	if err := s.gateway.Save(ctx, storage.KeyPlayerAbilities, blob); err != nil {
		return fmt.Errorf("persist ability cache: %w", err)
	}
	return nil
}

func (s *LineupService) persistLocked(ctx context.Context) error {
	blob, err := encodeLineups(s.lineups)
	if err != nil {
		return err
	}
	if err := s.gateway.Save(ctx, storage.KeyLineups, blob); err != nil {
		return fmt.Errorf("persist lineups: %w", err)
	}

	blob, err = encodeActiveID(s.activeID)
	if err != nil {
		return err
	}
	if err := s.gateway.Save(ctx, storage.KeyCurrentLineupID, blob); err != nil {
		return fmt.Errorf("persist active lineup id: %w", err)
	}

	return nil
}

func (s *LineupService) indexOfLocked(id int) (int, bool) {
	for i, item := range s.lineups {
		if item.ID == id {
			return i, true
		}
	}
	return 0, false
}

func equalSnapshots(current, captured []string) bool {
	if len(current) != len(captured) {
		return false
	}
	for i := range current {
		if current[i] != captured[i] {
			return false
		}
	}
	return true
}
