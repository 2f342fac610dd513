// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package plugin manages named extensions which contribute middleware
// stages and lifecycle listeners to a factory. Plugins are installed in
// registration order and can be toggled without unregistering.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tryerr-io/tryerr"
	"github.com/tryerr-io/tryerr/internal/nooplog"
	"github.com/tryerr-io/tryerr/internal/try"
)

var (
	// ErrAlreadyRegistered occurs when registering a plugin whose name
	// is already taken.
	ErrAlreadyRegistered = errors.New("plugin: already registered")

	// ErrUnknownPlugin occurs when enabling or disabling a name that
	// was never registered.
	ErrUnknownPlugin = errors.New("plugin: unknown plugin")
)

// Plugin is a named extension. Install is called exactly once, at
// registration, and declares the plugin's contributions on the host.
type Plugin interface {
	Name() string
	Install(ctx context.Context, host *Host) error
}

// Enabler is implemented by plugins that want a hook when their
// contributions are activated.
type Enabler interface {
	Enable(ctx context.Context) error
}

// Disabler is implemented by plugins that want a hook when their
// contributions are deactivated.
type Disabler interface {
	Disable(ctx context.Context) error
}

// Host collects a plugin's contributions during Install.
type Host struct {
	stages    []tryerr.Middleware
	listeners []listenerDecl
}

type listenerDecl struct {
	topic string
	fn    func(tryerr.Event)
}

// Use contributes middleware stages to the factory's pipeline. Stages are
// attached when the plugin is enabled and detached when it is disabled.
func (h *Host) Use(stages ...tryerr.Middleware) {
	h.stages = append(h.stages, stages...)
}

// Listen contributes a lifecycle listener. Like middleware, listeners are
// only active while the plugin is enabled.
func (h *Host) Listen(topic string, fn func(tryerr.Event)) {
	h.listeners = append(h.listeners, listenerDecl{topic: topic, fn: fn})
}

type registration struct {
	plugin  Plugin
	host    *Host
	enabled bool
	detach  []func()
}

// Manager registers plugins against a single factory.
type Manager struct {
	mu      sync.Mutex
	factory *tryerr.Factory
	order   []string
	byName  map[string]*registration

	log *slog.Logger
}

type managerOptions struct {
	logHandler slog.Handler
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerOptions)

// LogHandler sets the slog.Handler used to report recovered plugin hook
// panics. The default handler drops all records.
func LogHandler(h slog.Handler) ManagerOption {
	return func(o *managerOptions) {
		o.logHandler = h
	}
}

// NewManager returns a Manager contributing to f.
func NewManager(f *tryerr.Factory, opts ...ManagerOption) *Manager {
	o := &managerOptions{
		logHandler: nooplog.Handler{},
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Manager{
		factory: f,
		byName:  make(map[string]*registration),
		log:     slog.New(o.logHandler),
	}
}

// Register stores p, runs its Install hook and activates its
// contributions. Plugins are kept in registration order. A second plugin
// with the same name is rejected with [ErrAlreadyRegistered]. A panicking
// Install hook is converted into the returned error and the plugin is not
// kept.
func (m *Manager) Register(ctx context.Context, p Plugin) error {
	name := p.Name()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}

	host := &Host{}
	err := m.installPlugin(ctx, p, host)
	if err != nil {
		return err
	}

	reg := &registration{
		plugin: p,
		host:   host,
	}
	m.byName[name] = reg
	m.order = append(m.order, name)

	m.attach(reg)
	return nil
}

func (m *Manager) installPlugin(ctx context.Context, p Plugin, host *Host) (err error) {
	defer try.Recover(&err)

	return p.Install(ctx, host)
}

// Enable activates the named plugin's contributions and invokes its
// Enable hook when implemented. Enabling an enabled plugin is a no-op.
func (m *Manager) Enable(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}
	if reg.enabled {
		return nil
	}

	m.attach(reg)

	if e, ok := reg.plugin.(Enabler); ok {
		err := m.runHook(func() error { return e.Enable(ctx) })
		if err != nil {
			m.log.Warn(
				"plugin enable hook failed",
				slog.String("plugin", name),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

// Disable deactivates the named plugin's contributions without
// unregistering them, and invokes its Disable hook when implemented.
// Disabling a disabled plugin is a no-op.
func (m *Manager) Disable(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}
	if !reg.enabled {
		return nil
	}

	for _, detach := range reg.detach {
		detach()
	}
	reg.detach = nil
	reg.enabled = false

	if d, ok := reg.plugin.(Disabler); ok {
		err := m.runHook(func() error { return d.Disable(ctx) })
		if err != nil {
			m.log.Warn(
				"plugin disable hook failed",
				slog.String("plugin", name),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

// Plugins returns the registered plugin names in registration order.
func (m *Manager) Plugins() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Enabled reports whether the named plugin's contributions are active.
func (m *Manager) Enabled(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	reg, ok := m.byName[name]
	return ok && reg.enabled
}

// attach activates a registration's contributions. Callers must hold m.mu.
func (m *Manager) attach(reg *registration) {
	if len(reg.host.stages) > 0 {
		reg.detach = append(reg.detach, m.factory.Use(reg.host.stages...))
	}
	for _, l := range reg.host.listeners {
		reg.detach = append(reg.detach, m.factory.OnEvent(l.topic, l.fn))
	}
	reg.enabled = true
}

func (m *Manager) runHook(hook func() error) (err error) {
	defer try.Recover(&err)

	return hook()
}
