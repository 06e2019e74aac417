package sync

import (
	"context"
	gosync "sync"
)

// KeyedRunner supervises exactly one task per key. Setting a new key cancels
// the running task and waits for it to exit before the next starts
// (latest-key-wins); in-flight work of the old task is abandoned, not awaited
// for results.
type KeyedRunner[K comparable] struct {
	mu     gosync.Mutex
	run    func(ctx context.Context, key K)
	cancel context.CancelFunc
	done   chan struct{}
	key    K
	active bool
}

// NewKeyedRunner returns a runner executing run for each active key.
func NewKeyedRunner[K comparable](run func(ctx context.Context, key K)) *KeyedRunner[K] {
	return &KeyedRunner[K]{run: run}
}

// Set switches the runner to key. A no-op when the same key is already
// running. The task context is parented to parent.
func (r *KeyedRunner[K]) Set(parent context.Context, key K) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active && r.key == key {
		return
	}
	r.stopLocked()

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.key = key
	r.active = true

	go func() {
		defer close(done)
		r.run(ctx, key)
	}()
}

// Clear cancels the running task, if any, and waits for it to exit.
func (r *KeyedRunner[K]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *KeyedRunner[K]) stopLocked() {
	if !r.active {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil
	r.active = false
}
