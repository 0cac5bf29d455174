package topplayers

// TopPlayer is one row of the global ability ranking. Display-only; never
// written back by the engine.
type TopPlayer struct {
	PersonID  string
	Name      string
	Ability   float64
	Points    float64
	Rebounds  float64
	Assists   float64
	Steals    float64
	Blocks    float64
	Turnovers float64
}
