// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package event provides a small synchronous publish/subscribe channel for
// lifecycle notifications. Listeners run in subscription order and are
// individually isolated: a panicking listener is logged and skipped, and
// never prevents the remaining listeners from running.
package event

import (
	"log/slog"
	"sync"

	"github.com/tryerr-io/tryerr/internal/nooplog"
	"github.com/tryerr-io/tryerr/internal/try"
)

type options struct {
	logHandler slog.Handler
}

// Option configures an Emitter.
type Option func(*options)

// LogHandler sets the slog.Handler used to report panicking listeners.
// The default handler drops all records.
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// Emitter dispatches values to topic subscribers synchronously, in
// subscription order.
type Emitter[T any] struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription[T]

	log *slog.Logger
}

// New returns an empty Emitter.
func New[T any](opts ...Option) *Emitter[T] {
	o := &options{
		logHandler: nooplog.Handler{},
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Emitter[T]{
		subs: make(map[string][]subscription[T]),
		log:  slog.New(o.logHandler),
	}
}

// On subscribes fn to the given topic. The returned cancel func removes the
// subscription; calling it more than once is a no-op.
func (e *Emitter[T]) On(topic string, fn func(T)) func() {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs[topic] = append(e.subs[topic], subscription[T]{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.off(topic, id)
		})
	}
}

func (e *Emitter[T]) off(topic string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.subs[topic]
	for i, sub := range subs {
		if sub.id != id {
			continue
		}
		e.subs[topic] = append(subs[:i:i], subs[i+1:]...)
		return
	}
}

// Emit synchronously delivers v to every listener subscribed to topic at
// the moment of the call. A panicking listener is recovered and logged; the
// panic never reaches Emit's caller.
func (e *Emitter[T]) Emit(topic string, v T) {
	e.mu.RLock()
	subs := e.subs[topic]
	snapshot := make([]subscription[T], len(subs))
	copy(snapshot, subs)
	e.mu.RUnlock()

	for _, sub := range snapshot {
		err := try.Call(func() {
			sub.fn(v)
		})
		if err != nil {
			e.log.Warn(
				"event listener panicked",
				slog.String("topic", topic),
				slog.Any("error", err),
			)
		}
	}
}

// ListenerCount returns the number of active subscriptions for topic.
func (e *Emitter[T]) ListenerCount(topic string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs[topic])
}
