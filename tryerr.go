// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

var (
	defaultRegistry = NewRegistry()
	defaultFactory  = NewFactory(defaultRegistry)
)

// DefaultRegistry returns the process-wide registry backing the
// package-level functions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Default returns the process-wide factory backing the package-level
// functions.
func Default() *Factory {
	return defaultFactory
}

// Configure mutates the process-wide configuration. See
// [Registry.Configure].
func Configure(settings ...Setting) error {
	return defaultRegistry.Configure(settings...)
}

// Version returns the process-wide configuration version.
func Version() uint64 {
	return defaultRegistry.Version()
}

// OnChange registers a change listener on the process-wide registry.
func OnChange(fn func(version uint64)) func() {
	return defaultRegistry.OnChange(fn)
}

// New produces an error via the process-wide factory. See [Factory.New].
func New(kind, message string, opts ...ErrorOption) *Error {
	return defaultFactory.New(kind, message, opts...)
}

// Wrap produces an error chained to cause via the process-wide factory.
// See [Factory.Wrap].
func Wrap(kind string, cause error, opts ...ErrorOption) *Error {
	return defaultFactory.Wrap(kind, cause, opts...)
}

// FromThrown classifies an arbitrary value via the process-wide factory.
// See [Factory.FromThrown].
func FromThrown(v any, opts ...ErrorOption) *Error {
	return defaultFactory.FromThrown(v, opts...)
}

// FromPanic classifies a recovered panic value via the process-wide
// factory. See [Factory.FromPanic].
func FromPanic(recovered any, opts ...ErrorOption) *Error {
	return defaultFactory.FromPanic(recovered, opts...)
}

// Release returns a pooled error shell to the process-wide factory's
// free-list. See [Factory.Release].
func Release(e *Error) {
	defaultFactory.Release(e)
}

// UseMiddleware appends stages to the process-wide factory's pipeline and
// returns a remove func. See [Factory.Use].
func UseMiddleware(stages ...Middleware) func() {
	return defaultFactory.Use(stages...)
}

// OnEvent subscribes to a lifecycle topic on the process-wide factory.
// See [Factory.OnEvent].
func OnEvent(topic string, fn func(Event)) func() {
	return defaultFactory.OnEvent(topic, fn)
}

// Serialize renders e through the process-wide configuration's
// serializer. See [Factory.Serialize].
func Serialize(e *Error) map[string]any {
	return defaultFactory.Serialize(e)
}
