package sync

import (
	"context"

	"go.uber.org/zap"
)

// syncFavorites is the per-user favorites task. It resubscribes forever with
// a fixed delay between attempts; only cancellation ends it.
func (e *Engine) syncFavorites(ctx context.Context, userID int64) {
	policy := e.opts.NewRetry()
	for {
		err := e.streamFavorites(ctx, userID)
		if ctx.Err() != nil {
			return
		}
		e.logger.Warn("favorites subscription dropped, restarting",
			zap.Int64("user_id", userID), zap.Error(err))
		if !sleep(ctx, policy.NextDelay()) {
			return
		}
	}
}

// streamFavorites runs one subscription attempt. Each emission carries the
// full favorite set for the user and replaces the cached one.
func (e *Engine) streamFavorites(ctx context.Context, userID int64) error {
	stream, err := e.source.SubscribeUserFavorites(ctx, userID)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case favs, ok := <-stream.Updates():
			if !ok {
				return stream.Err()
			}
			if err := e.store.ReplaceFavorites(ctx, userID, favs); err != nil {
				return err
			}
		}
	}
}
