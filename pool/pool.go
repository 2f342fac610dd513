// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package pool provides a bounded free-list of reusable objects for
// reducing allocation pressure under high error-creation rates.
package pool

import "sync"

// Pool is a bounded free-list of reusable values. Acquire pops from the
// free-list when possible and allocates otherwise; Release resets a value
// and returns it to the free-list unless the list is at capacity, in which
// case the value is discarded and left to the garbage collector.
type Pool[T any] struct {
	mu    sync.Mutex
	free  []T
	alloc func() T
	reset func(T)

	hits     uint64
	misses   uint64
	acquired uint64
	released uint64
}

// Stats is a point-in-time snapshot of pool counters.
type Stats struct {
	// Hits counts acquires served from the free-list.
	Hits uint64

	// Misses counts acquires that allocated a fresh value.
	Misses uint64

	// Active is the number of values currently acquired and not released.
	Active int

	// Free is the current free-list length. Never exceeds Capacity.
	Free int

	// Capacity is the configured free-list bound.
	Capacity int
}

// New returns a Pool bounded at capacity values. alloc produces a fresh
// value on a miss and must not be nil. reset clears a value before it
// re-enters the free-list; nil means values are reused as released.
// A non-positive capacity yields a pool that never retains anything.
func New[T any](capacity int, alloc func() T, reset func(T)) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool[T]{
		free:  make([]T, 0, capacity),
		alloc: alloc,
		reset: reset,
	}
}

// Acquire returns a value from the free-list, or a freshly allocated one
// when the free-list is empty.
func (p *Pool[T]) Acquire() T {
	p.mu.Lock()

	p.acquired++
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		var zero T
		p.free[n-1] = zero
		p.free = p.free[:n-1]
		p.hits++
		p.mu.Unlock()
		return v
	}

	p.misses++
	p.mu.Unlock()
	return p.alloc()
}

// Release resets v and pushes it back onto the free-list if there is room.
// At capacity the value is discarded. Releasing more values than were
// acquired is a caller bug; counters will still reflect it.
func (p *Pool[T]) Release(v T) {
	if p.reset != nil {
		p.reset(v)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.released++
	if len(p.free) < cap(p.free) {
		p.free = append(p.free, v)
	}
}

// Warm fills the free-list with up to n freshly allocated values, bounded
// by the pool capacity.
func (p *Pool[T]) Warm(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < n && len(p.free) < cap(p.free); i++ {
		p.free = append(p.free, p.alloc())
	}
}

// Stats returns a snapshot of the pool counters.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Hits:     p.hits,
		Misses:   p.misses,
		Active:   int(p.acquired - p.released),
		Free:     len(p.free),
		Capacity: cap(p.free),
	}
}
