// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/tryerr-io/tryerr/internal/bitflags"
	"github.com/tryerr-io/tryerr/internal/nooplog"
	"github.com/tryerr-io/tryerr/internal/try"
)

// Registry is a versioned policy store. Reads are O(1) snapshots; every
// successful Configure replaces the snapshot atomically, increments the
// version by exactly one and notifies change listeners.
//
// The registry lives for the lifetime of its owner; there is no teardown.
// Re-initialization is an explicit Configure([WithDefaults]).
type Registry struct {
	mu        sync.RWMutex
	current   Config
	version   uint64
	flags     bitflags.Flags
	listeners []registryListener
	nextID    uint64

	log *slog.Logger
}

type registryListener struct {
	id uint64
	fn func(version uint64)
}

type registryOptions struct {
	logHandler slog.Handler
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

// RegistryLogHandler sets the slog.Handler used to report panicking change
// listeners. The default handler drops all records.
func RegistryLogHandler(h slog.Handler) RegistryOption {
	return func(o *registryOptions) {
		o.logHandler = h
	}
}

// NewRegistry returns a Registry holding [DefaultConfig] at version 0.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := &registryOptions{
		logHandler: nooplog.Handler{},
	}
	for _, opt := range opts {
		opt(o)
	}

	cfg := DefaultConfig()
	return &Registry{
		current: cfg,
		flags:   flagsFromConfig(cfg),
		log:     slog.New(o.logHandler),
	}
}

// Configure applies the given settings to a copy of the current snapshot,
// installs the copy atomically, bumps the version by exactly one and then
// notifies every registered listener with the new version. Each listener
// call is individually recovered: a panicking listener is logged and the
// remaining listeners still run. If any setting fails, nothing changes and
// no listener is notified.
func (r *Registry) Configure(settings ...Setting) error {
	r.mu.Lock()
	next := r.current
	for _, s := range settings {
		err := s.applyTo(&next)
		if err != nil {
			r.mu.Unlock()
			return err
		}
	}

	r.current = next
	r.version++
	r.flags = flagsFromConfig(next)
	version := r.version
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	if next.DevelopmentMode {
		r.log.Debug("configuration changed", slog.Uint64("version", version))
	}

	for _, l := range listeners {
		err := try.Call(func() {
			l.fn(version)
		})
		if err != nil {
			r.log.Warn(
				"config change listener panicked",
				slog.Uint64("version", version),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

// Snapshot returns a copy of the active configuration.
func (r *Registry) Snapshot() Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Version returns the current configuration version. Versions start at 0
// and increase strictly.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// active returns the snapshot together with its derived bit flags in one
// lock acquisition. The flags are recomputed only on version changes.
func (r *Registry) active() (Config, bitflags.Flags) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.flags
}

// OnChange registers fn to be called with the new version after every
// successful Configure. The returned cancel func removes the listener;
// calling it more than once is a no-op.
func (r *Registry) OnChange(fn func(version uint64)) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.listeners = append(r.listeners, registryListener{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, l := range r.listeners {
				if l.id == id {
					r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
