package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/nba-lineups/internal/domain/topplayers"
	"github.com/riskibarqy/nba-lineups/internal/platform/cache"
)

const topPlayersCacheKey = "roster:top-players"

// TopPlayerService serves the global ability ranking. Read-only and
// display-only; the engine never writes it back.
type TopPlayerService struct {
	provider TopPlayersProvider
	store    *cache.Store
}

func NewTopPlayerService(provider TopPlayersProvider, store *cache.Store) *TopPlayerService {
	return &TopPlayerService{provider: provider, store: store}
}

// List returns the ranking in provider order.
func (s *TopPlayerService) List(ctx context.Context) ([]topplayers.TopPlayer, error) {
	load := func(ctx context.Context) (any, error) {
		ranking, err := s.provider.FetchTopPlayers(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch top players: %w", err)
		}
		return ranking, nil
	}

	value, err := s.store.GetOrLoad(ctx, topPlayersCacheKey, load)
	if err != nil {
		return nil, err
	}
	ranking, ok := value.([]topplayers.TopPlayer)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value type %T", value)
	}

	out := make([]topplayers.TopPlayer, len(ranking))
	copy(out, ranking)
	return out, nil
}
