package models

import (
	"math"
	"sort"
)

// Station sort orders offered by the display layer. All of them read from the
// cached aggregate only.
const (
	SortPriceAsc      = "PRICE_ASC"
	SortPriceDesc     = "PRICE_DESC"
	SortMoreAvailable = "MORE_AVAILABLE"
	SortLessAvailable = "LESS_AVAILABLE"
	SortNearest       = "NEAREST"
	SortFarthest      = "FARTHEST"
	SortFastest       = "FASTEST"
	SortSlowest       = "SLOWEST"
	SortLessTravel    = "LESS_TIME_TRAVEL"
	SortMoreTravel    = "MORE_TIME_TRAVEL"
)

// SortStations orders stations in place. Location-relative orders are a no-op
// when the user position is unknown.
func SortStations(stations []StationFull, order string, userLoc *GeoLocation) {
	less := stationLess(order, userLoc)
	if less == nil {
		return
	}
	sort.SliceStable(stations, func(i, j int) bool {
		return less(stations[i], stations[j])
	})
}

func stationLess(order string, userLoc *GeoLocation) func(a, b StationFull) bool {
	needsLocation := order == SortNearest || order == SortFarthest ||
		order == SortLessTravel || order == SortMoreTravel
	if needsLocation && userLoc == nil {
		return nil
	}

	switch order {
	case SortPriceAsc:
		return func(a, b StationFull) bool {
			return minPriceOr(a, math.MaxFloat64) < minPriceOr(b, math.MaxFloat64)
		}
	case SortPriceDesc:
		return func(a, b StationFull) bool {
			return minPriceOr(a, 0) > minPriceOr(b, 0)
		}
	case SortMoreAvailable:
		return func(a, b StationFull) bool {
			return a.HasFreeCharger() && !b.HasFreeCharger()
		}
	case SortLessAvailable:
		return func(a, b StationFull) bool {
			return !a.HasFreeCharger() && b.HasFreeCharger()
		}
	case SortNearest:
		return func(a, b StationFull) bool {
			return DistanceMeters(*userLoc, a.Station.Location()) < DistanceMeters(*userLoc, b.Station.Location())
		}
	case SortFarthest:
		return func(a, b StationFull) bool {
			return DistanceMeters(*userLoc, a.Station.Location()) > DistanceMeters(*userLoc, b.Station.Location())
		}
	case SortLessTravel:
		return func(a, b StationFull) bool {
			ta := EstimateTravelTimeSeconds(DistanceMeters(*userLoc, a.Station.Location()))
			tb := EstimateTravelTimeSeconds(DistanceMeters(*userLoc, b.Station.Location()))
			return ta < tb
		}
	case SortMoreTravel:
		return func(a, b StationFull) bool {
			ta := EstimateTravelTimeSeconds(DistanceMeters(*userLoc, a.Station.Location()))
			tb := EstimateTravelTimeSeconds(DistanceMeters(*userLoc, b.Station.Location()))
			return ta > tb
		}
	case SortFastest:
		return func(a, b StationFull) bool {
			return a.MaxPowerRank() > b.MaxPowerRank()
		}
	case SortSlowest:
		return func(a, b StationFull) bool {
			return a.MaxPowerRank() < b.MaxPowerRank()
		}
	default:
		return nil
	}
}

func minPriceOr(s StationFull, fallback float64) float64 {
	if price, ok := s.MinPrice(); ok {
		return price
	}
	return fallback
}
