package location

import (
	"sync"

	"chargist/internal/models"
)

// Provider is the device location collaborator. Implementations push periodic
// fixes on Updates and answer last-known-location queries.
type Provider interface {
	Updates() <-chan models.GeoLocation
	Last() (models.GeoLocation, bool)
}

// StaticProvider is a Provider fed by explicit Publish calls. It backs tests
// and environments without a GPS source.
type StaticProvider struct {
	mu      sync.Mutex
	last    models.GeoLocation
	hasLast bool
	updates chan models.GeoLocation
}

// NewStaticProvider returns an empty provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{updates: make(chan models.GeoLocation, 1)}
}

// Publish records a fix and pushes it to listeners. A slow listener only ever
// misses intermediate fixes, never the latest.
func (p *StaticProvider) Publish(loc models.GeoLocation) {
	p.mu.Lock()
	p.last = loc
	p.hasLast = true
	p.mu.Unlock()

	select {
	case p.updates <- loc:
	default:
		select {
		case <-p.updates:
		default:
		}
		select {
		case p.updates <- loc:
		default:
		}
	}
}

// Updates returns the fix stream.
func (p *StaticProvider) Updates() <-chan models.GeoLocation {
	return p.updates
}

// Last returns the most recent fix.
func (p *StaticProvider) Last() (models.GeoLocation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.hasLast
}
