package models

import "math"

const earthRadiusMeters = 6371000.0

// GeoLocation is a WGS84 coordinate pair.
type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceMeters returns the haversine great-circle distance between two points.
func DistanceMeters(a, b GeoLocation) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Latitude))*math.Cos(toRadians(b.Latitude))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// EstimateTravelTimeSeconds converts a distance into expected city driving time.
// Assumes 30 km/h average speed.
func EstimateTravelTimeSeconds(distanceMeters float64) float64 {
	const speedMetersPerSecond = 8.33
	return distanceMeters / speedMetersPerSecond
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// metersPerDegreeLat is the approximate length of one degree of latitude.
const metersPerDegreeLat = 111000.0

// BoundingBox is a rectangular lat/lon range approximating a circular search
// radius around a center point.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the point falls inside the box.
func (b BoundingBox) Contains(p GeoLocation) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}

// BoundingBoxAround converts a center and radius into a query rectangle.
// Longitude degrees shrink toward the poles, so the longitude delta carries a
// cosine correction; it is clamped to a full hemisphere where the correction
// blows up near ±90°.
func BoundingBoxAround(center GeoLocation, radiusMeters float64) BoundingBox {
	latDelta := radiusMeters / metersPerDegreeLat

	lonDelta := 180.0
	if cosLat := math.Cos(toRadians(center.Latitude)); cosLat > 0 {
		lonDelta = radiusMeters / (metersPerDegreeLat * cosLat)
		if lonDelta > 180 {
			lonDelta = 180
		}
	}

	return BoundingBox{
		MinLat: center.Latitude - latDelta,
		MaxLat: center.Latitude + latDelta,
		MinLon: center.Longitude - lonDelta,
		MaxLon: center.Longitude + lonDelta,
	}
}
