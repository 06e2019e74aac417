package cache

import (
	"context"
	"sync"
)

// Tables with change notifications.
const (
	tableStations  = "stations"
	tableChargers  = "chargers"
	tableReviews   = "reviews"
	tableUsers     = "users"
	tableFavorites = "favorite_stations"
)

// hub fans out table change signals to watchers. Signals are coalesced: a
// watcher that has not consumed yet sees one pending signal, not a backlog.
type hub struct {
	mu       sync.Mutex
	watchers map[string]map[chan struct{}]struct{}
}

func newHub() *hub {
	return &hub{watchers: make(map[string]map[chan struct{}]struct{})}
}

func (h *hub) notify(tables ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, table := range tables {
		for ch := range h.watchers[table] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// watch returns a channel signaled whenever any of the tables change. The
// registration is removed when ctx ends.
func (h *hub) watch(ctx context.Context, tables ...string) <-chan struct{} {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	for _, table := range tables {
		if h.watchers[table] == nil {
			h.watchers[table] = make(map[chan struct{}]struct{})
		}
		h.watchers[table][ch] = struct{}{}
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		for _, table := range tables {
			delete(h.watchers[table], ch)
		}
		h.mu.Unlock()
	}()

	return ch
}
