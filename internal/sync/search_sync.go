package sync

import (
	"context"

	"go.uber.org/zap"

	"chargist/internal/watch"
)

// searchLoop turns debounced query text into cache content. Matches merge
// additively; stations outside the match set stay cached. An empty query only
// clears the published result ids.
func (e *Engine) searchLoop(ctx context.Context) {
	queries := watch.Debounce(ctx, e.searchQuery.Watch(ctx), e.opts.SearchDebounce)
	for {
		select {
		case <-ctx.Done():
			return
		case query, ok := <-queries:
			if !ok {
				return
			}
			e.runSearch(ctx, query)
		}
	}
}

func (e *Engine) runSearch(ctx context.Context, query string) {
	if query == "" {
		e.searchResults.Set(nil)
		return
	}

	stations, err := e.source.QueryByName(ctx, query)
	if err != nil {
		e.logger.Warn("name search failed", zap.String("query", query), zap.Error(err))
		return
	}

	ids := make([]int64, 0, len(stations))
	for _, station := range stations {
		if err := e.store.UpsertStation(ctx, station); err != nil {
			e.logger.Warn("search result caching failed",
				zap.Int64("station_id", station.ID), zap.Error(err))
			continue
		}
		ids = append(ids, station.ID)
	}
	e.searchResults.Set(ids)
}
