package sync

import (
	"context"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"chargist/internal/cache"
	"chargist/internal/location"
	"chargist/internal/models"
	"chargist/internal/session"
	"chargist/internal/watch"
)

// Options carries the engine tunables. Zero fields fall back to the values
// the mobile client shipped with.
type Options struct {
	PollInterval        time.Duration
	StabilityThreshold  int
	StabilityRadius     float64
	SearchRadius        float64
	GPSDebounce         time.Duration
	SearchDebounce      time.Duration
	ReviewPageSize      int
	CommentThreshold    int
	PageDelay           time.Duration
	FilterMaxDistanceKM float64
	Metered             bool

	// NewRetry builds the retry policy for one live-sync loop. Each loop gets
	// its own instance.
	NewRetry func() RetryPolicy
}

func (o *Options) normalize() {
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	if o.StabilityThreshold <= 0 {
		o.StabilityThreshold = 3
	}
	if o.StabilityRadius <= 0 {
		o.StabilityRadius = 50
	}
	if o.SearchRadius <= 0 {
		o.SearchRadius = 30000
	}
	if o.GPSDebounce <= 0 {
		o.GPSDebounce = 5 * time.Second
	}
	if o.SearchDebounce <= 0 {
		o.SearchDebounce = 1500 * time.Millisecond
	}
	if o.ReviewPageSize <= 0 {
		o.ReviewPageSize = 3
	}
	if o.CommentThreshold <= 0 {
		o.CommentThreshold = 4
	}
	if o.PageDelay <= 0 {
		o.PageDelay = 5 * time.Second
	}
	if o.FilterMaxDistanceKM <= 0 {
		o.FilterMaxDistanceKM = 100
	}
	if o.NewRetry == nil {
		o.NewRetry = func() RetryPolicy { return NewFixedDelayPolicy(2 * time.Second) }
	}
}

type pageRequest struct {
	stationID int64
	offset    int
}

// Engine is the synchronization core. It owns the trigger state, the per-key
// live-sync supervisors and the fetch policies, and writes everything it
// learns into the cache store.
type Engine struct {
	store    *cache.Store
	source   Source
	session  *session.Manager
	location location.Provider
	logger   *zap.Logger
	opts     Options

	viewport      *watch.Value[models.GeoLocation]
	zoom          *watch.Value[float64]
	searchQuery   *watch.Value[string]
	viewedStation *watch.Value[int64]
	searchResults *watch.Value[[]int64]
	reviewPage    *watch.Value[[]models.Review]

	favRunner    *KeyedRunner[int64]
	detailRunner *KeyedRunner[int64]

	mu       gosync.Mutex
	criteria models.FilterCriteria

	filterCh chan struct{}
	pageCh   chan pageRequest
}

// NewEngine wires the engine. Run must be called for anything to happen.
func NewEngine(store *cache.Store, source Source, sess *session.Manager, loc location.Provider, logger *zap.Logger, opts Options) *Engine {
	opts.normalize()
	e := &Engine{
		store:    store,
		source:   source,
		session:  sess,
		location: loc,
		logger:   logger,
		opts:     opts,

		viewport:      watch.NewValue[models.GeoLocation](),
		zoom:          watch.NewValue[float64](),
		searchQuery:   watch.NewValue[string](),
		viewedStation: watch.NewValue[int64](),
		searchResults: watch.NewValue[[]int64](),
		reviewPage:    watch.NewValue[[]models.Review](),

		criteria: models.DefaultFilterCriteria(),
		filterCh: make(chan struct{}, 1),
		pageCh:   make(chan pageRequest, 1),
	}
	e.favRunner = NewKeyedRunner(e.syncFavorites)
	e.detailRunner = NewKeyedRunner(e.syncStationDetail)
	return e
}

// Run drives all sync loops until ctx ends. The per-key tasks are stopped
// before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	loops := []func(context.Context){
		e.gpsLoop,
		e.settleLoop,
		e.sessionLoop,
		e.viewLoop,
		e.searchLoop,
		e.filterLoop,
		e.pageLoop,
	}

	var wg gosync.WaitGroup
	for _, loop := range loops {
		wg.Add(1)
		go func(loop func(context.Context)) {
			defer wg.Done()
			loop(ctx)
		}(loop)
	}
	wg.Wait()

	e.favRunner.Clear()
	e.detailRunner.Clear()
	return ctx.Err()
}

// SetViewport records the current map drag-center. Fetches fire only after
// the stability detector reports a settle.
func (e *Engine) SetViewport(center models.GeoLocation) {
	e.viewport.Set(center)
}

// SetZoom records the current map zoom level for display-layer consumers.
func (e *Engine) SetZoom(level float64) {
	e.zoom.Set(level)
}

// WatchZoom streams zoom level changes.
func (e *Engine) WatchZoom(ctx context.Context) <-chan float64 {
	return e.zoom.Watch(ctx)
}

// SetViewedStation opens detail sync for the station.
func (e *Engine) SetViewedStation(id int64) {
	e.viewedStation.Set(id)
}

// ClearViewedStation closes detail sync.
func (e *Engine) ClearViewedStation() {
	e.viewedStation.Set(0)
}

// SetSearchQuery records the search text. The sync fires after the debounce
// window passes without further edits.
func (e *Engine) SetSearchQuery(query string) {
	e.searchQuery.Set(query)
}

// WatchSearchResults streams the ids of the latest name-search match set.
func (e *Engine) WatchSearchResults(ctx context.Context) <-chan []int64 {
	return e.searchResults.Watch(ctx)
}

// ApplyFilter replaces the active criteria and triggers a filter fetch.
func (e *Engine) ApplyFilter(criteria models.FilterCriteria) {
	e.mu.Lock()
	e.criteria = criteria
	e.mu.Unlock()
	e.triggerFilter()
}

// LoadMoreFiltered re-runs the filter fetch with the active criteria. The
// already-cached id set has grown since the last run, so the server returns
// the next slice of matches.
func (e *Engine) LoadMoreFiltered() {
	e.triggerFilter()
}

func (e *Engine) triggerFilter() {
	select {
	case e.filterCh <- struct{}{}:
	default:
	}
}

// LoadReviewPage fetches one review page at the given offset and publishes it
// as the current page. Independent of the automatic backfill cursor.
func (e *Engine) LoadReviewPage(stationID int64, offset int) {
	req := pageRequest{stationID: stationID, offset: offset}
	select {
	case e.pageCh <- req:
	default:
		// replace a stale pending request with the newest one
		select {
		case <-e.pageCh:
		default:
		}
		select {
		case e.pageCh <- req:
		default:
		}
	}
}

// WatchReviewPage streams the most recently loaded explicit review page.
func (e *Engine) WatchReviewPage(ctx context.Context) <-chan []models.Review {
	return e.reviewPage.Watch(ctx)
}

func (e *Engine) criteriaSnapshot() models.FilterCriteria {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.criteria
}

// sessionLoop keeps exactly one favorites task alive per authenticated user.
// Guest sessions never sync favorites.
func (e *Engine) sessionLoop(ctx context.Context) {
	users := e.session.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case user := <-users:
			if user.IsGuest() {
				e.favRunner.Clear()
				continue
			}
			e.favRunner.Set(ctx, user.ID)
		}
	}
}

// viewLoop keeps the detail-sync task pinned to the viewed station.
func (e *Engine) viewLoop(ctx context.Context) {
	ids := e.viewedStation.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-ids:
			if id == 0 {
				e.detailRunner.Clear()
				continue
			}
			e.detailRunner.Set(ctx, id)
		}
	}
}

// sleep waits for d or until ctx ends, whichever comes first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
