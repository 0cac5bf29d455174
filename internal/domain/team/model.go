package team

import "fmt"

// Team is a club appearing in today's schedule.
type Team struct {
	TeamID  string
	Name    string
	Tricode string
}

func (t Team) Validate() error {
	if t.TeamID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
