package selection

import "github.com/riskibarqy/nba-lineups/internal/domain/player"

// Session is the transient draft set used while the user picks players for a
// lineup. It is an independent copy of the lineup's current roster: nothing
// touches the committed state until the caller confirms and commits. A
// discarded session leaves no trace.
type Session struct {
	limit   int
	ordered []player.Player
	byID    map[string]int
}

// Open seeds a session from the non-empty players of the lineup being edited.
// Seed entries beyond the limit or with duplicate PersonIDs are dropped.
func Open(seed []player.Player, limit int) *Session {
	s := &Session{
		limit:   limit,
		ordered: make([]player.Player, 0, limit),
		byID:    make(map[string]int, limit),
	}
	for _, p := range seed {
		s.add(p)
	}
	return s
}

// Toggle removes the player when already selected, otherwise adds it when the
// session is below its limit. At the limit the add is silently rejected; the
// UI disables further picks, but the session enforces the cap itself.
func (s *Session) Toggle(p player.Player) {
	if idx, ok := s.byID[p.PersonID]; ok {
		s.ordered = append(s.ordered[:idx], s.ordered[idx+1:]...)
		delete(s.byID, p.PersonID)
		for i := idx; i < len(s.ordered); i++ {
			s.byID[s.ordered[i].PersonID] = i
		}
		return
	}
	s.add(p)
}

func (s *Session) add(p player.Player) {
	if len(s.ordered) >= s.limit {
		return
	}
	if _, ok := s.byID[p.PersonID]; ok {
		return
	}
	s.byID[p.PersonID] = len(s.ordered)
	s.ordered = append(s.ordered, p)
}

// Selected reports whether a player is currently in the draft set.
func (s *Session) Selected(personID string) bool {
	_, ok := s.byID[personID]
	return ok
}

// Full reports whether the session reached its limit.
func (s *Session) Full() bool {
	return len(s.ordered) >= s.limit
}

func (s *Session) Len() int {
	return len(s.ordered)
}

// Confirm returns the draft set in selection order, ready for a roster
// commit. The session itself never mutates the lineup store.
func (s *Session) Confirm() []player.Player {
	out := make([]player.Player, len(s.ordered))
	copy(out, s.ordered)
	return out
}
