package usecase

import (
	"context"
	"fmt"
	"strings"

	concpool "github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/nba-lineups/internal/domain/player"
	"github.com/riskibarqy/nba-lineups/internal/domain/team"
	"github.com/riskibarqy/nba-lineups/internal/platform/cache"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
)

const (
	teamsCacheKey         = "roster:teams"
	teamPlayersCachePfx   = "roster:team-players:"
	warmRosterConcurrency = 4
)

// PlayerService is the thin browsing layer behind the player picker: today's
// teams and their rosters, memoized so reopening the picker does not hit the
// provider again within the TTL.
type PlayerService struct {
	provider RosterProvider
	store    *cache.Store
	logger   *logging.Logger
}

func NewPlayerService(provider RosterProvider, store *cache.Store, logger *logging.Logger) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayerService{provider: provider, store: store, logger: logger}
}

// ListTeams returns the teams playing today, deduplicated, first-seen order.
func (s *PlayerService) ListTeams(ctx context.Context) ([]team.Team, error) {
	load := func(ctx context.Context) (any, error) {
		teams, err := s.provider.FetchTeams(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch teams: %w", err)
		}
		return teams, nil
	}

	value, err := s.store.GetOrLoad(ctx, teamsCacheKey, load)
	if err != nil {
		return nil, err
	}
	teams, ok := value.([]team.Team)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value type %T", value)
	}

	out := make([]team.Team, len(teams))
	copy(out, teams)
	return out, nil
}

// ListTeamPlayers returns the current roster for one team.
func (s *PlayerService) ListTeamPlayers(ctx context.Context, teamID string) ([]player.Player, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("%w: team_id is required", ErrInvalidInput)
	}

	load := func(ctx context.Context) (any, error) {
		players, err := s.provider.FetchTeamPlayers(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("fetch team players team_id=%s: %w", teamID, err)
		}
		return players, nil
	}

	value, err := s.store.GetOrLoad(ctx, teamPlayersCachePfx+teamID, load)
	if err != nil {
		return nil, err
	}
	players, ok := value.([]player.Player)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value type %T", value)
	}

	out := make([]player.Player, len(players))
	copy(out, players)
	return out, nil
}

// WarmTeamPlayers prefetches rosters for the given teams with bounded
// concurrency, so the picker switches teams without a visible load.
func (s *PlayerService) WarmTeamPlayers(ctx context.Context, teams []team.Team) error {
	if len(teams) == 0 {
		return nil
	}

	workers := concpool.New().WithContext(ctx).WithMaxGoroutines(warmRosterConcurrency)
	for _, t := range teams {
		teamID := t.TeamID
		workers.Go(func(ctx context.Context) error {
			if _, err := s.ListTeamPlayers(ctx, teamID); err != nil {
				s.logger.WarnContext(ctx, "roster warmup failed", "team_id", teamID, "error", err)
			}
			// Warmup is best effort; one bad team must not stop the rest.
			return nil
		})
	}
	return workers.Wait()
}
