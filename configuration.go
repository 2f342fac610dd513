// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

import (
	"fmt"

	"github.com/tryerr-io/tryerr/config"
	"github.com/tryerr-io/tryerr/internal/bitflags"
)

const (
	defaultStackTraceLimit = 64
	defaultPoolSize        = 64
	defaultMaxContextSize  = 10_000
)

// Serializer controls which subset of an [Error] is emitted to logging and
// monitoring collaborators.
type Serializer func(*Error) map[string]any

// ErrorHook observes or transforms every error produced by a factory.
// Returning nil keeps the error unchanged.
type ErrorHook func(*Error) *Error

// Config is a policy snapshot governing how much diagnostic work error
// creation performs. Snapshots are plain values; mutate them only through
// [Registry.Configure].
type Config struct {
	// CaptureStackTrace enables stack capture at error creation.
	CaptureStackTrace bool `config:"capture_stack_trace"`

	// StackTraceLimit bounds the number of captured frames. A limit of 0
	// disables capture even when CaptureStackTrace is set.
	StackTraceLimit int `config:"stack_trace_limit"`

	// IncludeSource derives a "file:line" origin from the stack.
	IncludeSource bool `config:"include_source"`

	// MinimalErrors bypasses all diagnostic capture regardless of the
	// other toggles. This is the fastest path.
	MinimalErrors bool `config:"minimal_errors"`

	// SkipTimestamp omits creation timestamps.
	SkipTimestamp bool `config:"skip_timestamp"`

	// SkipContext omits context processing entirely.
	SkipContext bool `config:"skip_context"`

	// DefaultErrorType is the fallback kind tag for untyped errors.
	DefaultErrorType string `config:"default_error_type"`

	// DevelopmentMode enables verbose internal logging.
	DevelopmentMode bool `config:"development_mode"`

	// Serializer overrides the default output shape. Not settable from
	// declarative sources; use [WithSerializer].
	Serializer Serializer `config:"-"`

	// OnError is invoked for every created error. Not settable from
	// declarative sources; use [WithOnError]. Panics are isolated.
	OnError ErrorHook `config:"-"`

	// Performance tunes pooling and context handling.
	Performance Performance `config:"performance"`
}

// Performance holds the nested performance sub-settings.
type Performance struct {
	// PoolEnabled acquires error shells from a bounded pool instead of
	// allocating fresh.
	PoolEnabled bool `config:"pool_enabled"`

	// PoolSize bounds the pool free-list. A factory reads it once, at its
	// first pooled acquisition; later changes do not resize that factory's
	// existing pool.
	PoolSize int `config:"pool_size"`

	// MaxContextSize caps individual context string values, in bytes.
	MaxContextSize int `config:"max_context_size"`

	// DeepCloneContext deep-clones context payloads instead of shallow
	// copying the top level.
	DeepCloneContext bool `config:"deep_clone_context"`
}

// DefaultConfig returns the configuration a fresh [Registry] starts with.
func DefaultConfig() Config {
	return Config{
		CaptureStackTrace: true,
		StackTraceLimit:   defaultStackTraceLimit,
		IncludeSource:     true,
		DefaultErrorType:  KindError,
		Performance: Performance{
			PoolSize:       defaultPoolSize,
			MaxContextSize: defaultMaxContextSize,
		},
	}
}

func flagsFromConfig(cfg Config) bitflags.Flags {
	var f bitflags.Flags
	if cfg.MinimalErrors {
		// Minimal mode wins over everything else.
		return f.With(bitflags.Minimal | bitflags.SkipTimestamp | bitflags.SkipContext)
	}
	if cfg.CaptureStackTrace && cfg.StackTraceLimit > 0 {
		f = f.With(bitflags.CaptureStack)
	}
	if cfg.IncludeSource {
		f = f.With(bitflags.IncludeSource)
	}
	if cfg.SkipTimestamp {
		f = f.With(bitflags.SkipTimestamp)
	}
	if cfg.SkipContext {
		f = f.With(bitflags.SkipContext)
	}
	if cfg.Performance.DeepCloneContext {
		f = f.With(bitflags.DeepClone)
	}
	if cfg.Performance.PoolEnabled {
		f = f.With(bitflags.Pool)
	}
	if cfg.DevelopmentMode {
		f = f.With(bitflags.Development)
	}
	return f
}

// Setting mutates a pending configuration snapshot during
// [Registry.Configure]. All settings passed to one Configure call are
// applied to the same pending snapshot, producing a single version bump.
type Setting interface {
	applyTo(*Config) error
}

type settingFunc func(*Config) error

func (f settingFunc) applyTo(cfg *Config) error {
	return f(cfg)
}

// Use merges declarative configuration sources onto the snapshot. Only keys
// present in the sources are written.
func Use(srcs ...config.Source) Setting {
	return settingFunc(func(cfg *Config) error {
		m, err := config.Read(srcs...)
		if err != nil {
			return ConfigReadError{Cause: err}
		}
		err = m.Unmarshal(cfg)
		if err != nil {
			return ConfigDecodeError{Cause: err}
		}
		return nil
	})
}

// WithSerializer sets the serializer hook.
func WithSerializer(s Serializer) Setting {
	return settingFunc(func(cfg *Config) error {
		cfg.Serializer = s
		return nil
	})
}

// WithOnError sets the per-error observer/transform hook.
func WithOnError(h ErrorHook) Setting {
	return settingFunc(func(cfg *Config) error {
		cfg.OnError = h
		return nil
	})
}

// WithDefaults resets the snapshot to [DefaultConfig] before any further
// settings in the same Configure call are applied.
func WithDefaults() Setting {
	return settingFunc(func(cfg *Config) error {
		*cfg = DefaultConfig()
		return nil
	})
}

// Settings combines multiple settings into one, applied in order.
func Settings(settings ...Setting) Setting {
	return settingFunc(func(cfg *Config) error {
		for _, s := range settings {
			err := s.applyTo(cfg)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ConfigReadError occurs when a configuration source cannot be read.
type ConfigReadError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConfigReadError) Error() string {
	return fmt.Sprintf("failed to read config source(s): %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigReadError) Unwrap() error {
	return e.Cause
}

// ConfigDecodeError occurs when merged configuration values cannot be
// decoded onto the snapshot.
type ConfigDecodeError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e ConfigDecodeError) Error() string {
	return fmt.Sprintf("failed to decode config source(s) onto snapshot: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e ConfigDecodeError) Unwrap() error {
	return e.Cause
}
