// Package app wires the lineup engine for embedding: the presentation layer
// constructs one Engine and drives everything through it.
package app

import (
	"context"
	"fmt"

	"github.com/riskibarqy/nba-lineups/external/nbastats"
	"github.com/riskibarqy/nba-lineups/internal/config"
	"github.com/riskibarqy/nba-lineups/internal/domain/ability"
	"github.com/riskibarqy/nba-lineups/internal/domain/selection"
	"github.com/riskibarqy/nba-lineups/internal/domain/storage"
	filegw "github.com/riskibarqy/nba-lineups/internal/infrastructure/repository/file"
	"github.com/riskibarqy/nba-lineups/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nba-lineups/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/nba-lineups/internal/platform/cache"
	"github.com/riskibarqy/nba-lineups/internal/platform/logging"
	"github.com/riskibarqy/nba-lineups/internal/platform/resilience"
	"github.com/riskibarqy/nba-lineups/internal/usecase"
)

// Engine bundles the lineup store, reconciler and the browsing services
// behind one lifecycle.
type Engine struct {
	Lineups    *usecase.LineupService
	Reconciler *usecase.Reconciler
	Players    *usecase.PlayerService
	TopPlayers *usecase.TopPlayerService
	Abilities  *ability.Cache

	logger  *logging.Logger
	closers []func() error
}

func NewEngine(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Default()
	}

	gateway, closeGateway, err := newGateway(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := nbastats.NewClient(nbastats.ClientConfig{
		BaseURL:    cfg.ProviderBaseURL,
		Timeout:    cfg.ProviderTimeout,
		MaxRetries: cfg.ProviderMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ProviderCircuitEnabled,
			FailureThreshold: cfg.ProviderCircuitFailureCount,
			OpenTimeout:      cfg.ProviderCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ProviderCircuitHalfOpenMaxReq,
		},
	})

	abilities := ability.NewCache()
	lineups := usecase.NewLineupService(gateway, abilities, logger)
	reconciler, err := usecase.NewReconciler(client, lineups, abilities, cfg.ReconcileWorkers, logger)
	if err != nil {
		if closeGateway != nil {
			_ = closeGateway()
		}
		return nil, err
	}
	lineups.SetReconciler(reconciler)

	// Restored state is best effort: a broken gateway leaves the defaults in
	// place, the in-memory state stays the source of truth.
	if err := lineups.Restore(ctx); err != nil {
		logger.WarnContext(ctx, "restore persisted state failed", "error", err)
	}

	rosterCache := cache.NewStore(cfg.RosterCacheTTL)

	engine := &Engine{
		Lineups:    lineups,
		Reconciler: reconciler,
		Players:    usecase.NewPlayerService(client, rosterCache, logger),
		TopPlayers: usecase.NewTopPlayerService(client, rosterCache),
		Abilities:  abilities,
		logger:     logger,
	}
	if closeGateway != nil {
		engine.closers = append(engine.closers, closeGateway)
	}
	return engine, nil
}

// RefreshActiveLineup re-fetches abilities for the active lineup on user
// request.
func (e *Engine) RefreshActiveLineup(ctx context.Context) error {
	return e.Reconciler.Refresh(ctx, e.Lineups.ActiveLineupID())
}

// OpenSelection starts a player-picker draft seeded from the active lineup.
func (e *Engine) OpenSelection() *selection.Session {
	return e.Lineups.OpenSelection()
}

// Close drains in-flight reconciliations and releases the storage backend.
func (e *Engine) Close() error {
	e.Reconciler.Close()

	var firstErr error
	for _, closeFn := range e.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func newGateway(ctx context.Context, cfg config.Config) (storage.Gateway, func() error, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return memory.NewGateway(), nil, nil
	case config.StorageFile:
		gw, err := filegw.NewGateway(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return gw, nil, nil
	case config.StorageSQLite:
		gw, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return gw, gw.Close, nil
	case config.StoragePostgres:
		gw, err := sqlstore.Open(ctx, sqlstore.DriverPostgres, cfg.DBURL)
		if err != nil {
			return nil, nil, err
		}
		return gw, gw.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
