package player

import "fmt"

// Player is a selectable athlete from a live roster feed.
//
// Ability is the last ability score merged for this player, nil until the
// first successful fetch. It exists for display only; the process-wide
// ability cache stays authoritative for total computation.
type Player struct {
	PersonID    string
	Name        string
	DisplayName string
	Ability     *float64
}

func (p Player) Validate() error {
	if p.PersonID == "" {
		return fmt.Errorf("player person id is required")
	}
	if p.Name == "" && p.DisplayName == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}

// Label returns the preferred display string, falling back to the raw name.
func (p Player) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}
