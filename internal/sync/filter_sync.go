package sync

import (
	"context"

	"go.uber.org/zap"

	"chargist/internal/remote"
)

// filterLoop serves filter-apply and load-more triggers. One fetch at a time;
// triggers arriving mid-fetch coalesce into a single follow-up run.
func (e *Engine) filterLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.filterCh:
			e.fetchFiltered(ctx)
		}
	}
}

// fetchFiltered calls the server-side filter function and merges the matches
// into the cache. Chargers are replaced wholesale per matched station.
// Failures are logged and dropped.
func (e *Engine) fetchFiltered(ctx context.Context) {
	criteria := e.criteriaSnapshot()

	cached, err := e.store.AllStationIDs(ctx)
	if err != nil {
		e.logger.Warn("filter fetch: listing cached ids failed", zap.Error(err))
		return
	}

	req := remote.FilterRequest{
		OnlyAvailable:  criteria.OnlyAvailable,
		ChargerTypes:   criteria.ChargerTypes,
		ChargerSpeeds:  criteria.ChargerPowers,
		MinPrice:       criteria.MinPrice,
		MaxPrice:       criteria.MaxPrice,
		PaymentMethods: criteria.PaymentMethods,
		NearbyServices: criteria.NearbyServices,
		AlreadyHave:    cached,
		MaxDistance:    e.opts.FilterMaxDistanceKM,
	}
	if loc, ok := e.location.Last(); ok {
		req.UserLatitude = loc.Latitude
		req.UserLongitude = loc.Longitude
	}

	matches, err := e.source.CallFilterFunction(ctx, req)
	if err != nil {
		e.logger.Warn("filter fetch failed", zap.Error(err))
		return
	}

	for _, match := range matches {
		if err := e.mergeFilterMatch(ctx, match); err != nil {
			e.logger.Warn("filter merge failed",
				zap.Int64("station_id", match.Station.ID), zap.Error(err))
		}
	}
	e.logger.Debug("filter fetch merged", zap.Int("matches", len(matches)))
}

func (e *Engine) mergeFilterMatch(ctx context.Context, match remote.FilterMatch) error {
	if err := e.store.ReplaceChargers(ctx, match.Station.ID, match.Chargers); err != nil {
		return err
	}
	return e.store.UpsertStation(ctx, match.Station)
}
