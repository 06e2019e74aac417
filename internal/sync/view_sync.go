package sync

import (
	"context"
	gosync "sync"

	"go.uber.org/zap"

	"chargist/internal/models"
)

// syncStationDetail is the per-station detail task. Three children share its
// lifetime: the station-fields subscription, the charger-list subscription
// and the review backfill loop. Cancelling the task stops all of them before
// a task for another station may start.
func (e *Engine) syncStationDetail(ctx context.Context, stationID int64) {
	var wg gosync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		e.resubscribeLoop(ctx, "station fields", stationID, func(ctx context.Context) error {
			return e.streamStationFields(ctx, stationID)
		})
	}()
	go func() {
		defer wg.Done()
		e.resubscribeLoop(ctx, "charger list", stationID, func(ctx context.Context) error {
			return e.streamChargers(ctx, stationID)
		})
	}()
	go func() {
		defer wg.Done()
		e.backfillReviews(ctx, stationID)
	}()
	wg.Wait()
}

// resubscribeLoop restarts attempt forever with a fixed delay, until ctx ends.
func (e *Engine) resubscribeLoop(ctx context.Context, what string, stationID int64, attempt func(context.Context) error) {
	policy := e.opts.NewRetry()
	for {
		err := attempt(ctx)
		if ctx.Err() != nil {
			return
		}
		e.logger.Warn("detail subscription dropped, restarting",
			zap.String("what", what), zap.Int64("station_id", stationID), zap.Error(err))
		if !sleep(ctx, policy.NextDelay()) {
			return
		}
	}
}

func (e *Engine) streamStationFields(ctx context.Context, stationID int64) error {
	stream, err := e.source.SubscribeStation(ctx, stationID)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case station, ok := <-stream.Updates():
			if !ok {
				return stream.Err()
			}
			if err := e.store.UpsertStation(ctx, station); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) streamChargers(ctx context.Context, stationID int64) error {
	stream, err := e.source.SubscribeStationChargers(ctx, stationID)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chargers, ok := <-stream.Updates():
			if !ok {
				return stream.Err()
			}
			if err := e.store.ReplaceChargers(ctx, stationID, chargers); err != nil {
				return err
			}
		}
	}
}

// backfillReviews pages through the station's reviews oldest-first until
// enough commented reviews are cached or a page comes back empty. A failed
// fetch ends the loop the same way an empty page does; the next detail
// activation starts over.
func (e *Engine) backfillReviews(ctx context.Context, stationID int64) {
	offset := 0
	for {
		commented, err := e.store.CountCommentedReviews(ctx, stationID)
		if err != nil {
			e.logger.Warn("review backfill: count failed",
				zap.Int64("station_id", stationID), zap.Error(err))
			return
		}
		if commented >= e.opts.CommentThreshold {
			return
		}

		page, err := e.source.FetchReviewsPage(ctx, stationID, offset, e.opts.ReviewPageSize)
		if err != nil {
			if ctx.Err() == nil {
				e.logger.Warn("review backfill: page fetch failed",
					zap.Int64("station_id", stationID), zap.Int("offset", offset), zap.Error(err))
			}
			return
		}
		if len(page) == 0 {
			return
		}

		if err := e.cacheReviewPage(ctx, page); err != nil {
			e.logger.Warn("review backfill: caching page failed",
				zap.Int64("station_id", stationID), zap.Error(err))
			return
		}
		offset += e.opts.ReviewPageSize

		if !sleep(ctx, e.opts.PageDelay) {
			return
		}
	}
}

// cacheReviewPage upserts each review's author before the review itself so
// joined reads never miss the author row.
func (e *Engine) cacheReviewPage(ctx context.Context, page []models.Review) error {
	for _, review := range page {
		author, err := e.source.FetchUser(ctx, review.UserID)
		if err == nil {
			if err := e.store.UpsertUser(ctx, author); err != nil {
				return err
			}
		} else {
			e.logger.Warn("review author fetch failed",
				zap.Int64("user_id", review.UserID), zap.Error(err))
		}
		if err := e.store.UpsertReview(ctx, review); err != nil {
			return err
		}
	}
	return nil
}

// pageLoop serves explicit load-page requests. Each fetches exactly one page
// at the requested offset and publishes it as the current page, leaving the
// automatic backfill cursor untouched.
func (e *Engine) pageLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-e.pageCh:
			page, err := e.source.FetchReviewsPage(ctx, req.stationID, req.offset, e.opts.ReviewPageSize)
			if err != nil {
				e.logger.Warn("review page fetch failed",
					zap.Int64("station_id", req.stationID), zap.Int("offset", req.offset), zap.Error(err))
				continue
			}
			if err := e.cacheReviewPage(ctx, page); err != nil {
				e.logger.Warn("review page caching failed",
					zap.Int64("station_id", req.stationID), zap.Error(err))
				continue
			}
			e.reviewPage.Set(page)
		}
	}
}
