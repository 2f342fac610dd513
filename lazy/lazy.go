// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package lazy provides compute-once cells for deferring expensive work,
// such as stack trace formatting, until the result is actually read.
package lazy

import (
	"sync"
	"sync/atomic"
)

// Cell holds a value that is computed at most once, on first read.
//
// The evaluated state transitions from false to true exactly once and never
// reverts, regardless of how often the cell is read afterwards.
type Cell[T any] struct {
	once    sync.Once
	done    atomic.Bool
	compute func() T
	value   T
}

// New returns a Cell which will call compute on the first Get.
// compute must not be nil.
func New[T any](compute func() T) *Cell[T] {
	return &Cell[T]{compute: compute}
}

// Resolved returns a Cell already holding v. Its evaluated state starts true
// and Get never invokes any computation.
func Resolved[T any](v T) *Cell[T] {
	c := &Cell[T]{value: v}
	c.once.Do(func() {})
	c.done.Store(true)
	return c
}

// Get returns the cell's value, computing and caching it on first call.
func (c *Cell[T]) Get() T {
	c.once.Do(func() {
		c.value = c.compute()
		c.compute = nil
		c.done.Store(true)
	})
	return c.value
}

// Evaluated reports whether the value has been computed. It is false before
// the first Get and true forever after.
func (c *Cell[T]) Evaluated() bool {
	return c.done.Load()
}
