package sync

import "chargist/internal/models"

// StabilityDetector decides when the map center has settled. It is fed one
// sample per poll tick; a sample within radius of the reference center bumps
// the stable count, anything farther becomes the new reference with count 1.
// Reaching the threshold emits the reference center and restarts the count,
// so fetches fire on settle instead of on every drag event.
type StabilityDetector struct {
	radiusMeters float64
	threshold    int

	reference    models.GeoLocation
	hasReference bool
	stableCount  int
}

// NewStabilityDetector returns a detector in the unstable state.
func NewStabilityDetector(radiusMeters float64, threshold int) *StabilityDetector {
	return &StabilityDetector{radiusMeters: radiusMeters, threshold: threshold}
}

// Sample feeds one poll tick. Returns the reference center and true exactly
// when the threshold of consecutive stable samples is reached.
func (d *StabilityDetector) Sample(center models.GeoLocation) (models.GeoLocation, bool) {
	if d.hasReference && models.DistanceMeters(center, d.reference) <= d.radiusMeters {
		d.stableCount++
	} else {
		d.stableCount = 1
		d.reference = center
		d.hasReference = true
	}

	if d.stableCount >= d.threshold {
		d.stableCount = 0
		return d.reference, true
	}
	return models.GeoLocation{}, false
}
