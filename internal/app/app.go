// Package app assembles the sync engine from its configured parts.
package app

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"chargist/internal/cache"
	"chargist/internal/config"
	"chargist/internal/location"
	"chargist/internal/models"
	"chargist/internal/remote"
	"chargist/internal/session"
	"chargist/internal/sync"
)

// App wires the sync engine dependencies.
type App struct {
	engine   *sync.Engine
	store    *cache.Store
	client   *remote.Client
	session  *session.Manager
	location *location.StaticProvider
	logger   *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	store, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}

	client := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.RealtimeURL, cfg.Remote.APIToken,
		&http.Client{Timeout: cfg.RemoteTimeout()}, logger)

	sess := session.NewManager(cfg.Session.Path, store, logger)
	provider := location.NewStaticProvider()

	retryDelay := cfg.RetryDelay()
	engine := sync.NewEngine(store, &sourceAdapter{client}, sess, provider, logger, sync.Options{
		PollInterval:        cfg.PollInterval(),
		StabilityThreshold:  cfg.Sync.StabilityThreshold,
		StabilityRadius:     cfg.Sync.StabilityRadius,
		SearchRadius:        cfg.Sync.SearchRadius,
		GPSDebounce:         cfg.GPSDebounce(),
		SearchDebounce:      cfg.SearchDebounce(),
		ReviewPageSize:      cfg.Sync.ReviewPageSize,
		CommentThreshold:    cfg.Sync.CommentThreshold,
		PageDelay:           cfg.PageDelay(),
		FilterMaxDistanceKM: cfg.Sync.FilterMaxDistanceKM,
		Metered:             cfg.Remote.MeteredConn,
		NewRetry:            func() sync.RetryPolicy { return sync.NewFixedDelayPolicy(retryDelay) },
	})

	return &App{
		engine:   engine,
		store:    store,
		client:   client,
		session:  sess,
		location: provider,
		logger:   logger,
	}, nil
}

// Engine exposes the sync engine triggers to the embedding layer.
func (a *App) Engine() *sync.Engine {
	return a.engine
}

// Store exposes the cache for reactive reads.
func (a *App) Store() *cache.Store {
	return a.store
}

// Session exposes the session manager.
func (a *App) Session() *session.Manager {
	return a.session
}

// Location exposes the position feed for the embedding layer to publish into.
func (a *App) Location() *location.StaticProvider {
	return a.location
}

// Run restores the persisted session and drives the engine until ctx ends.
func (a *App) Run(ctx context.Context) error {
	a.session.Restore(ctx, a.client)
	return a.engine.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close cache", zap.Error(err))
		}
	}
}

// sourceAdapter lifts the concrete remote client onto the engine's Source
// interface; the typed streams need the interface indirection.
type sourceAdapter struct {
	*remote.Client
}

func (s *sourceAdapter) SubscribeStation(ctx context.Context, stationID int64) (sync.Stream[models.Station], error) {
	return s.Client.SubscribeStation(ctx, stationID)
}

func (s *sourceAdapter) SubscribeStationChargers(ctx context.Context, stationID int64) (sync.Stream[[]models.Charger], error) {
	return s.Client.SubscribeStationChargers(ctx, stationID)
}

func (s *sourceAdapter) SubscribeUserFavorites(ctx context.Context, userID int64) (sync.Stream[[]models.Favorite], error) {
	return s.Client.SubscribeUserFavorites(ctx, userID)
}
