// Package watch provides latest-value streams: explicitly owned state objects
// whose consumers observe the newest value and may miss intermediate ones.
package watch

import (
	"context"
	"sync"
	"time"
)

// Value holds the latest value of a stream and fans it out to watchers.
// Watchers are conflated: a slow watcher sees the newest value, never a
// backlog.
type Value[T any] struct {
	mu   sync.Mutex
	val  T
	set  bool
	subs map[chan T]struct{}
}

// NewValue returns an empty Value.
func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[chan T]struct{})}
}

// Set replaces the current value and notifies watchers.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.val = val
	v.set = true
	for ch := range v.subs {
		push(ch, val)
	}
}

// Get returns the current value and whether one was ever set.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.val, v.set
}

// Watch returns a channel carrying the current value (if any) followed by
// every subsequent Set. The registration ends with ctx.
func (v *Value[T]) Watch(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	v.mu.Lock()
	v.subs[ch] = struct{}{}
	if v.set {
		push(ch, v.val)
	}
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subs, ch)
		v.mu.Unlock()
	}()

	return ch
}

// push replaces an unconsumed value with the fresh one. Only called while the
// owner's lock is held, so the drain/send pair cannot interleave.
func push[T any](ch chan T, val T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- val:
	default:
	}
}

// Debounce forwards the latest value from in once it has been quiet for d.
// The returned channel closes when in closes or ctx ends.
func Debounce[T any](ctx context.Context, in <-chan T, d time.Duration) <-chan T {
	out := make(chan T, 1)

	go func() {
		defer close(out)

		var pending T
		var hasPending bool
		timer := time.NewTimer(d)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case val, ok := <-in:
				if !ok {
					return
				}
				pending = val
				hasPending = true
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(d)
			case <-timer.C:
				if !hasPending {
					continue
				}
				hasPending = false
				select {
				case out <- pending:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
