package lineup

import (
	"fmt"

	"github.com/riskibarqy/nba-lineups/internal/domain/player"
)

const (
	// RosterSize is the fixed number of slots per lineup. Empty slots are nil.
	RosterSize = 5
	// MaxLineups bounds how many lineups one user can keep.
	MaxLineups = 3
)

// Lineup is a named roster of up to RosterSize players. The slot array always
// has length RosterSize; a nil slot is empty. No two non-empty slots may share
// a PersonID.
type Lineup struct {
	ID      int
	Name    string
	Players [RosterSize]*player.Player
}

// New returns an empty lineup with the default name for the given id.
func New(id int) Lineup {
	return Lineup{ID: id, Name: DefaultName(id)}
}

// DefaultName derives the system-assigned name from the lineup identifier.
func DefaultName(id int) string {
	return fmt.Sprintf("Lineup %d", id)
}

// SetRoster replaces all slots from the given players, deduplicating by
// PersonID (first occurrence wins), truncating beyond RosterSize and padding
// the rest with empty slots.
func (l *Lineup) SetRoster(players []player.Player) {
	var slots [RosterSize]*player.Player
	seen := make(map[string]struct{}, RosterSize)
	next := 0
	for _, p := range players {
		if next >= RosterSize {
			break
		}
		if _, dup := seen[p.PersonID]; dup {
			continue
		}
		seen[p.PersonID] = struct{}{}
		copied := p
		slots[next] = &copied
		next++
	}
	l.Players = slots
}

// RosterIDs returns the PersonIDs of the non-empty slots in slot order.
func (l Lineup) RosterIDs() []string {
	ids := make([]string, 0, RosterSize)
	for _, slot := range l.Players {
		if slot != nil {
			ids = append(ids, slot.PersonID)
		}
	}
	return ids
}

// IsEmpty reports whether every slot is empty.
func (l Lineup) IsEmpty() bool {
	for _, slot := range l.Players {
		if slot != nil {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can hold a snapshot safely.
func (l Lineup) Clone() Lineup {
	copied := l
	for i, slot := range l.Players {
		if slot == nil {
			continue
		}
		p := *slot
		copied.Players[i] = &p
	}
	return copied
}

// FormatAbility renders a score the way the presentation layer shows it.
func FormatAbility(score float64) string {
	return fmt.Sprintf("%.1f", score)
}
