// Package sync keeps the local cache consistent with the remote source. It
// runs the viewport-driven fetch policies, the per-user favorites loop, the
// per-station detail subscriptions and the debounced search population, all
// writing into the cache store that the display layer reads reactively.
package sync

import (
	"context"

	"chargist/internal/models"
	"chargist/internal/remote"
)

// Stream is a live feed of values from the remote change feed.
type Stream[T any] interface {
	Updates() <-chan T
	Err() error
	Close()
}

// Source is the remote backend as consumed by the engine. Every operation is
// fallible network I/O; the engine owns all retry behavior.
type Source interface {
	QueryByBoundingBox(ctx context.Context, box models.BoundingBox, reduced bool) ([]models.Station, error)
	QueryByName(ctx context.Context, pattern string) ([]models.Station, error)
	CallFilterFunction(ctx context.Context, req remote.FilterRequest) ([]remote.FilterMatch, error)
	FetchReviewsPage(ctx context.Context, stationID int64, offset, limit int) ([]models.Review, error)
	FetchUser(ctx context.Context, id int64) (models.User, error)
	SubscribeStation(ctx context.Context, stationID int64) (Stream[models.Station], error)
	SubscribeStationChargers(ctx context.Context, stationID int64) (Stream[[]models.Charger], error)
	SubscribeUserFavorites(ctx context.Context, userID int64) (Stream[[]models.Favorite], error)
}
