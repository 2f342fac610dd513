// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

// Scope is an isolated registry and factory pair. Configuring a scope
// never touches the process-wide registry, its version counter or its
// listeners, so a hot loop can run in minimal mode while the rest of the
// process keeps full diagnostics. Scopes are owned by whoever created
// them and are never shared implicitly.
type Scope struct {
	registry *Registry
	factory  *Factory
}

type scopeOptions struct {
	registryOpts []RegistryOption
	factoryOpts  []FactoryOption
}

// ScopeOption configures a Scope.
type ScopeOption func(*scopeOptions)

// ScopeRegistryOptions forwards options to the scope's registry.
func ScopeRegistryOptions(opts ...RegistryOption) ScopeOption {
	return func(o *scopeOptions) {
		o.registryOpts = append(o.registryOpts, opts...)
	}
}

// ScopeFactoryOptions forwards options to the scope's factory.
func ScopeFactoryOptions(opts ...FactoryOption) ScopeOption {
	return func(o *scopeOptions) {
		o.factoryOpts = append(o.factoryOpts, opts...)
	}
}

// NewScope returns a Scope starting from [DefaultConfig] with the given
// settings applied.
func NewScope(settings []Setting, opts ...ScopeOption) (*Scope, error) {
	var o scopeOptions
	for _, opt := range opts {
		opt(&o)
	}

	reg := NewRegistry(o.registryOpts...)
	if len(settings) > 0 {
		err := reg.Configure(settings...)
		if err != nil {
			return nil, err
		}
	}

	return &Scope{
		registry: reg,
		factory:  NewFactory(reg, o.factoryOpts...),
	}, nil
}

// Configure mutates only this scope's configuration.
func (s *Scope) Configure(settings ...Setting) error {
	return s.registry.Configure(settings...)
}

// Snapshot returns the scope's active configuration.
func (s *Scope) Snapshot() Config {
	return s.registry.Snapshot()
}

// Version returns the scope's configuration version.
func (s *Scope) Version() uint64 {
	return s.registry.Version()
}

// Factory returns the scope's factory for direct use.
func (s *Scope) Factory() *Factory {
	return s.factory
}

// New produces an error under the scope's configuration.
func (s *Scope) New(kind, message string, opts ...ErrorOption) *Error {
	return s.factory.New(kind, message, opts...)
}

// Wrap produces an error chained to cause under the scope's configuration.
func (s *Scope) Wrap(kind string, cause error, opts ...ErrorOption) *Error {
	return s.factory.Wrap(kind, cause, opts...)
}

// FromThrown classifies an arbitrary value under the scope's configuration.
func (s *Scope) FromThrown(v any, opts ...ErrorOption) *Error {
	return s.factory.FromThrown(v, opts...)
}

// FromPanic classifies a recovered panic value under the scope's
// configuration.
func (s *Scope) FromPanic(recovered any, opts ...ErrorOption) *Error {
	return s.factory.FromPanic(recovered, opts...)
}
