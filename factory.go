// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tryerr-io/tryerr/event"
	"github.com/tryerr-io/tryerr/internal/bitflags"
	"github.com/tryerr-io/tryerr/internal/intern"
	"github.com/tryerr-io/tryerr/internal/nooplog"
	"github.com/tryerr-io/tryerr/internal/stack"
	"github.com/tryerr-io/tryerr/internal/try"
	"github.com/tryerr-io/tryerr/lazy"
	"github.com/tryerr-io/tryerr/pool"
)

// modulePrefix filters this library's own frames out of source derivation.
const modulePrefix = "github.com/tryerr-io/tryerr"

// now is swappable for deterministic timestamps in tests.
var now = time.Now

// Factory produces [Error] values under the policy of its registry. It is
// infallible from the caller's perspective: panics raised by hooks,
// middleware stages and event listeners are recovered, logged and never
// alter the returned error's correctness.
type Factory struct {
	reg *Registry
	log *slog.Logger

	mu       sync.RWMutex
	stages   []stageEntry
	nextID   uint64
	composed Middleware

	emitter *event.Emitter[Event]

	poolMu sync.Mutex
	shells *pool.Pool[*Error]

	stopConfigEvents func()
}

type stageEntry struct {
	id uint64
	mw Middleware
}

type factoryOptions struct {
	logHandler slog.Handler
}

// FactoryOption configures a Factory.
type FactoryOption func(*factoryOptions)

// FactoryLogHandler sets the slog.Handler used to report recovered panics
// from hooks, stages and listeners. The default handler drops all records.
func FactoryLogHandler(h slog.Handler) FactoryOption {
	return func(o *factoryOptions) {
		o.logHandler = h
	}
}

// NewFactory returns a Factory bound to reg. The factory republishes the
// registry's change notifications as [TopicConfigChanged] events.
func NewFactory(reg *Registry, opts ...FactoryOption) *Factory {
	o := &factoryOptions{
		logHandler: nooplog.Handler{},
	}
	for _, opt := range opts {
		opt(o)
	}

	f := &Factory{
		reg:     reg,
		log:     slog.New(o.logHandler),
		emitter: event.New[Event](event.LogHandler(o.logHandler)),
	}
	f.stopConfigEvents = reg.OnChange(func(version uint64) {
		f.emitter.Emit(TopicConfigChanged, Event{
			Topic:   TopicConfigChanged,
			Version: version,
		})
	})
	return f
}

// Registry returns the registry governing this factory.
func (f *Factory) Registry() *Registry {
	return f.reg
}

// Close detaches the factory from its registry's change notifications, so
// no further [TopicConfigChanged] events are emitted. The factory itself
// keeps working against the registry's latest snapshot. Calling Close more
// than once is a no-op.
func (f *Factory) Close() {
	f.stopConfigEvents()
}

type errorOptions struct {
	cause   error
	message string
	ctx     map[string]any
}

// ErrorOption supplies optional fields at error creation.
type ErrorOption func(*errorOptions)

// WithCause chains the new error to an originating failure.
func WithCause(cause error) ErrorOption {
	return func(o *errorOptions) {
		o.cause = cause
	}
}

// WithMessage overrides the default message of [Factory.Wrap].
func WithMessage(message string) ErrorOption {
	return func(o *errorOptions) {
		o.message = message
	}
}

// WithContext merges the given payload into the error's context.
func WithContext(ctx map[string]any) ErrorOption {
	return func(o *errorOptions) {
		if len(ctx) == 0 {
			return
		}
		if o.ctx == nil {
			o.ctx = make(map[string]any, len(ctx))
		}
		for k, v := range ctx {
			o.ctx[k] = v
		}
	}
}

// WithKV adds a single context key-value pair.
func WithKV(key string, value any) ErrorOption {
	return func(o *errorOptions) {
		if o.ctx == nil {
			o.ctx = make(map[string]any, 1)
		}
		o.ctx[key] = value
	}
}

// New produces an error with the given kind and message under the active
// configuration. In minimal mode the result carries only kind, message
// and cause, and no expensive work is performed.
func (f *Factory) New(kind, message string, opts ...ErrorOption) *Error {
	var o errorOptions
	for _, opt := range opts {
		opt(&o)
	}
	return f.build(kind, message, o)
}

// Wrap produces an error chained to cause. The message defaults to
// cause.Error() and can be overridden with [WithMessage].
func (f *Factory) Wrap(kind string, cause error, opts ...ErrorOption) *Error {
	var o errorOptions
	for _, opt := range opts {
		opt(&o)
	}

	o.cause = cause
	if o.message == "" && cause != nil {
		o.message = safeMessage(cause)
	}
	return f.build(kind, o.message, o)
}

// FromThrown classifies an arbitrary recovered or returned value into an
// error. Known native error shapes map to matching kind tags, plain
// strings map to [KindString], and any other value maps to [KindUnknown].
// It never panics regardless of the input's shape.
func (f *Factory) FromThrown(v any, opts ...ErrorOption) *Error {
	var o errorOptions
	for _, opt := range opts {
		opt(&o)
	}

	switch x := v.(type) {
	case nil:
		return f.build(KindUnknown, "unknown error: <nil>", o)
	case *Error:
		if x == nil {
			return f.build(KindUnknown, "unknown error: <nil>", o)
		}
		if o.ctx == nil {
			return x
		}
		n := x.clone()
		if n.Context == nil {
			n.Context = make(map[string]any, len(o.ctx))
		}
		for k, val := range o.ctx {
			n.Context[k] = val
		}
		return n
	case error:
		kind := classifyError(x)
		o.cause = x
		return f.build(kind, safeMessage(x), o)
	case string:
		return f.build(KindString, x, o)
	default:
		return f.build(KindUnknown, safeFormat(x), o)
	}
}

// FromPanic classifies a value recovered from a panic. The result carries
// Context["panic"] = true in addition to whatever classification
// [Factory.FromThrown] produces.
func (f *Factory) FromPanic(recovered any, opts ...ErrorOption) *Error {
	opts = append(opts, WithKV("panic", true))
	if perr, ok := recovered.(try.PanicError); ok {
		recovered = perr.Value
	}
	return f.FromThrown(recovered, opts...)
}

func (f *Factory) build(kind, message string, o errorOptions) *Error {
	cfg, flags := f.reg.active()

	if kind == "" {
		kind = cfg.DefaultErrorType
	}
	if kind == "" {
		kind = KindUnknown
	}
	kind = intern.Intern(kind)

	if flags.Has(bitflags.Minimal) {
		e := &Error{
			Kind:    kind,
			Message: message,
			Cause:   o.cause,
		}
		return f.finish(cfg, e)
	}

	var e *Error
	if flags.Has(bitflags.Pool) {
		e = f.acquireShell(cfg)
		e.pooled = true
	} else {
		e = &Error{}
	}
	e.Kind = kind
	e.Message = message
	e.Cause = o.cause

	if flags.Has(bitflags.CaptureStack) {
		tr := stack.Capture(2, cfg.StackTraceLimit)
		if !tr.Empty() {
			e.stack = lazy.New(tr.Format)
			if flags.Has(bitflags.IncludeSource) {
				e.source = lazy.New(func() string {
					// Both prefixes are needed: the "." form matches
					// this package's own functions, the "/" form
					// matches subpackages.
					return tr.Origin(modulePrefix+".", modulePrefix+"/")
				})
			}
		}
	}
	if !flags.Has(bitflags.SkipTimestamp) {
		e.Timestamp = now()
	}
	if !flags.Has(bitflags.SkipContext) && o.ctx != nil {
		e.Context = sanitizeContext(o.ctx, cfg.Performance)
	}
	return f.finish(cfg, e)
}

func (f *Factory) finish(cfg Config, e *Error) *Error {
	if cfg.OnError != nil {
		out := e
		err := try.Call(func() {
			res := cfg.OnError(out)
			if res != nil {
				out = res
			}
		})
		if err != nil {
			f.log.Warn("onError hook panicked", slog.Any("error", err))
		} else {
			e = out
		}
	}

	transformed := f.runPipeline(e)
	if transformed != nil && transformed != e {
		e = transformed
		f.emitter.Emit(TopicTransformed, Event{
			Topic: TopicTransformed,
			Error: e,
		})
	}

	f.emitter.Emit(TopicCreated, Event{
		Topic: TopicCreated,
		Error: e,
	})
	return e
}

// Use appends stages to the factory's pipeline in registration order. The
// returned remove func detaches exactly those stages again; calling it
// more than once is a no-op.
func (f *Factory) Use(stages ...Middleware) func() {
	f.mu.Lock()
	ids := make([]uint64, 0, len(stages))
	for _, mw := range stages {
		f.nextID++
		f.stages = append(f.stages, stageEntry{id: f.nextID, mw: mw})
		ids = append(ids, f.nextID)
	}
	f.rebuildPipeline()
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for _, id := range ids {
				for i, entry := range f.stages {
					if entry.id == id {
						f.stages = append(f.stages[:i:i], f.stages[i+1:]...)
						break
					}
				}
			}
			f.rebuildPipeline()
		})
	}
}

// rebuildPipeline recomposes the cached pipeline. Callers must hold f.mu.
func (f *Factory) rebuildPipeline() {
	if len(f.stages) == 0 {
		f.composed = nil
		return
	}

	wrapped := make([]Middleware, len(f.stages))
	for i, entry := range f.stages {
		wrapped[i] = f.isolated(entry.mw)
	}
	f.composed = Compose(wrapped...)
}

// isolated recovers a panicking stage at the pipeline boundary: the panic
// is logged and the stage is treated as if it had returned its input
// without proceeding.
func (f *Factory) isolated(stage Middleware) Middleware {
	return func(e *Error, next Next) (out *Error) {
		out = e
		defer func() {
			r := recover()
			if r != nil {
				f.log.Warn("middleware stage panicked", slog.Any("panic", r))
			}
		}()
		res := stage(e, next)
		if res == nil {
			return e
		}
		return res
	}
}

func (f *Factory) runPipeline(e *Error) *Error {
	f.mu.RLock()
	composed := f.composed
	f.mu.RUnlock()

	if composed == nil {
		return e
	}
	return composed(e, func(out *Error) *Error {
		return out
	})
}

// OnEvent subscribes fn to a lifecycle topic. The returned cancel func
// removes the subscription.
func (f *Factory) OnEvent(topic string, fn func(Event)) func() {
	return f.emitter.On(topic, fn)
}

func (f *Factory) acquireShell(cfg Config) *Error {
	f.poolMu.Lock()
	if f.shells == nil {
		size := cfg.Performance.PoolSize
		if size <= 0 {
			size = defaultPoolSize
		}
		f.shells = pool.New(size,
			func() *Error { return &Error{} },
			func(e *Error) { e.reset() },
		)
	}
	p := f.shells
	f.poolMu.Unlock()

	return p.Acquire()
}

// Release returns a pooled error shell to the free-list. Errors that were
// not pool-acquired, or that already left the pool's ownership via a copy,
// are ignored. The error must not be used after release.
func (f *Factory) Release(e *Error) {
	if e == nil || !e.pooled {
		return
	}

	f.poolMu.Lock()
	p := f.shells
	f.poolMu.Unlock()
	if p == nil {
		return
	}
	p.Release(e)
}

// PoolStats reports the shell pool counters. ok is false when pooling has
// never been activated on this factory.
func (f *Factory) PoolStats() (stats pool.Stats, ok bool) {
	f.poolMu.Lock()
	defer f.poolMu.Unlock()
	if f.shells == nil {
		return pool.Stats{}, false
	}
	return f.shells.Stats(), true
}

// safeMessage extracts err.Error() without trusting it: a panicking Error
// method yields a placeholder instead of propagating.
func safeMessage(err error) string {
	message := "unprintable error"
	_ = try.Call(func() {
		message = err.Error()
	})
	return message
}

// safeFormat renders an arbitrary value without trusting its Stringer.
func safeFormat(v any) string {
	formatted := fmt.Sprintf("unprintable value of type %T", v)
	_ = try.Call(func() {
		formatted = fmt.Sprintf("%v", v)
	})
	return formatted
}
