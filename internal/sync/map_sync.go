package sync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"chargist/internal/cache"
	"chargist/internal/models"
	"chargist/internal/watch"
)

// gpsLoop fetches stations around each debounced GPS fix. High-frequency
// fixes collapse to the last one per debounce window.
func (e *Engine) gpsLoop(ctx context.Context) {
	fixes := watch.Debounce(ctx, e.location.Updates(), e.opts.GPSDebounce)
	for {
		select {
		case <-ctx.Done():
			return
		case fix, ok := <-fixes:
			if !ok {
				return
			}
			e.fetchNearby(ctx, fix)
		}
	}
}

// settleLoop samples the drag-center on every poll tick and fetches once the
// stability detector reports a settle.
func (e *Engine) settleLoop(ctx context.Context) {
	detector := NewStabilityDetector(e.opts.StabilityRadius, e.opts.StabilityThreshold)
	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			center, ok := e.viewport.Get()
			if !ok {
				continue
			}
			if settled, fire := detector.Sample(center); fire {
				e.fetchNearby(ctx, settled)
			}
		}
	}
}

// fetchNearby queries the bounding box around center and reconciles the
// result into the cache. Stations already cached keep their detail fields and
// only get the display columns refreshed; new ones are inserted as returned.
// Failures are logged and dropped, the next trigger retries naturally.
func (e *Engine) fetchNearby(ctx context.Context, center models.GeoLocation) {
	box := models.BoundingBoxAround(center, e.opts.SearchRadius)
	stations, err := e.source.QueryByBoundingBox(ctx, box, e.opts.Metered)
	if err != nil {
		e.logger.Warn("bounding-box fetch failed",
			zap.Float64("lat", center.Latitude),
			zap.Float64("lon", center.Longitude),
			zap.Error(err))
		return
	}

	for _, station := range stations {
		_, err := e.store.GetStation(ctx, station.ID)
		switch {
		case errors.Is(err, cache.ErrNotFound):
			err = e.store.UpsertStation(ctx, station)
		case err == nil:
			err = e.store.UpdateStationDisplay(ctx, station.ID,
				station.Name, station.Latitude, station.Longitude, station.AvgRating)
		}
		if err != nil {
			e.logger.Warn("station reconcile failed",
				zap.Int64("station_id", station.ID), zap.Error(err))
		}
	}
}
