package usecase

import (
	"context"

	"github.com/riskibarqy/nba-lineups/internal/domain/player"
	"github.com/riskibarqy/nba-lineups/internal/domain/team"
	"github.com/riskibarqy/nba-lineups/internal/domain/topplayers"
)

// RosterProvider supplies the teams playing today and their rosters.
type RosterProvider interface {
	FetchTeams(ctx context.Context) ([]team.Team, error)
	FetchTeamPlayers(ctx context.Context, teamID string) ([]player.Player, error)
}

// AbilityProvider resolves ability scores for a set of players in one call.
type AbilityProvider interface {
	FetchAbilities(ctx context.Context, personIDs []string) (map[string]float64, error)
}

// TopPlayersProvider supplies the global ability ranking.
type TopPlayersProvider interface {
	FetchTopPlayers(ctx context.Context) ([]topplayers.TopPlayer, error)
}
