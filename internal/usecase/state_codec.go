package usecase

import (
	"fmt"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/nba-lineups/internal/domain/lineup"
	"github.com/riskibarqy/nba-lineups/internal/domain/player"
)

// Persisted blob shapes. Field names stay wire-compatible with the shape the
// presentation layer originally stored, so old saved state keeps loading.
type persistedPlayer struct {
	PersonID    string   `json:"personId"`
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName,omitempty"`
	Ability     *float64 `json:"ability,omitempty"`
}

type persistedLineup struct {
	ID      int                `json:"id"`
	Name    string             `json:"name"`
	Players []*persistedPlayer `json:"players"`
}

func encodeLineups(items []lineup.Lineup) ([]byte, error) {
	out := make([]persistedLineup, 0, len(items))
	for _, item := range items {
		row := persistedLineup{
			ID:      item.ID,
			Name:    item.Name,
			Players: make([]*persistedPlayer, lineup.RosterSize),
		}
		for i, slot := range item.Players {
			if slot == nil {
				continue
			}
			row.Players[i] = &persistedPlayer{
				PersonID:    slot.PersonID,
				Name:        slot.Name,
				DisplayName: slot.DisplayName,
				Ability:     slot.Ability,
			}
		}
		out = append(out, row)
	}

	blob, err := sonic.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode lineups: %w", err)
	}
	return blob, nil
}

func decodeLineups(blob []byte) ([]lineup.Lineup, error) {
	var rows []persistedLineup
	if err := sonic.Unmarshal(blob, &rows); err != nil {
		return nil, fmt.Errorf("decode lineups: %w", err)
	}

	out := make([]lineup.Lineup, 0, len(rows))
	for _, row := range rows {
		item := lineup.Lineup{ID: row.ID, Name: row.Name}
		if item.Name == "" {
			item.Name = lineup.DefaultName(item.ID)
		}
		for i, slot := range row.Players {
			if i >= lineup.RosterSize || slot == nil {
				continue
			}
			item.Players[i] = &player.Player{
				PersonID:    slot.PersonID,
				Name:        slot.Name,
				DisplayName: slot.DisplayName,
				Ability:     slot.Ability,
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func encodeActiveID(id int) ([]byte, error) {
	blob, err := sonic.Marshal(id)
	if err != nil {
		return nil, fmt.Errorf("encode active lineup id: %w", err)
	}
	return blob, nil
}

func decodeActiveID(blob []byte) (int, error) {
	var id int
	if err := sonic.Unmarshal(blob, &id); err != nil {
		return 0, fmt.Errorf("decode active lineup id: %w", err)
	}
	return id, nil
}

func encodeAbilities(scores map[string]float64) ([]byte, error) {
	blob, err := sonic.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("encode ability cache: %w", err)
	}
	return blob, nil
}

func decodeAbilities(blob []byte) (map[string]float64, error) {
	var scores map[string]float64
	if err := sonic.Unmarshal(blob, &scores); err != nil {
		return nil, fmt.Errorf("decode ability cache: %w", err)
	}
	return scores, nil
}
