// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/tryerr-io/tryerr"
	"github.com/tryerr-io/tryerr/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactory(t *testing.T, settings ...tryerr.Setting) *tryerr.Factory {
	t.Helper()

	reg := tryerr.NewRegistry()
	if len(settings) > 0 {
		require.NoError(t, reg.Configure(settings...))
	}
	return tryerr.NewFactory(reg)
}

func TestFactory_New(t *testing.T) {
	t.Run("captures full diagnostics under the default config", func(t *testing.T) {
		f := newFactory(t)

		e := f.New("ValidationError", "email is required", tryerr.WithKV("field", "email"))
		require.NotNil(t, e)

		assert.Equal(t, "ValidationError", e.Kind)
		assert.Equal(t, "email is required", e.Message)
		assert.Equal(t, "ValidationError: email is required", e.Error())
		assert.True(t, e.HasStack())
		assert.Contains(t, e.Stack(), "factory_test.go")
		assert.Contains(t, e.Source(), "factory_test.go")
		assert.False(t, e.Timestamp.IsZero())
		assert.Equal(t, "email", e.Context["field"])
	})

	t.Run("minimal mode skips stack, source, timestamp and context", func(t *testing.T) {
		f := newFactory(t, tryerr.PresetMinimal())

		e := f.New("X", "m", tryerr.WithKV("ignored", 1))
		require.NotNil(t, e)

		assert.Equal(t, "X", e.Kind)
		assert.Equal(t, "m", e.Message)
		assert.False(t, e.HasStack())
		assert.Equal(t, "", e.Stack())
		assert.Equal(t, "", e.Source())
		assert.True(t, e.Timestamp.IsZero())
		assert.Nil(t, e.Context)
	})

	t.Run("stack trace limit of zero disables capture even when the flag is set", func(t *testing.T) {
		f := newFactory(t, tryerr.Use(config.Map{
			"capture_stack_trace": true,
			"stack_trace_limit":   0,
		}))

		e := f.New("X", "m")
		assert.False(t, e.HasStack())
		assert.Equal(t, "", e.Source())
	})

	t.Run("empty kind falls back to the configured default type", func(t *testing.T) {
		f := newFactory(t, tryerr.Use(config.Map{"default_error_type": "AppError"}))

		e := f.New("", "m")
		assert.Equal(t, "AppError", e.Kind)
	})

	t.Run("skip_timestamp and skip_context are honored independently", func(t *testing.T) {
		f := newFactory(t, tryerr.Use(config.Map{
			"skip_timestamp": true,
			"skip_context":   true,
		}))

		e := f.New("X", "m", tryerr.WithKV("a", 1))
		assert.True(t, e.Timestamp.IsZero())
		assert.Nil(t, e.Context)
		assert.True(t, e.HasStack(), "stack capture is still on")
	})

	t.Run("stack resolution is deferred until first read", func(t *testing.T) {
		f := newFactory(t)

		e := f.New("X", "m")
		require.True(t, e.HasStack())
		assert.False(t, e.StackEvaluated())

		_ = e.Stack()
		assert.True(t, e.StackEvaluated())

		_ = e.Stack()
		assert.True(t, e.StackEvaluated(), "evaluated state never reverts")
	})

	t.Run("never panics when the onError hook panics", func(t *testing.T) {
		reg := tryerr.NewRegistry()
		require.NoError(t, reg.Configure(tryerr.WithOnError(func(*tryerr.Error) *tryerr.Error {
			panic("hostile hook")
		})))
		f := tryerr.NewFactory(reg)

		var e *tryerr.Error
		assert.NotPanics(t, func() {
			e = f.New("X", "m")
		})
		require.NotNil(t, e)
		assert.Equal(t, "X", e.Kind)
		assert.Equal(t, "m", e.Message)
	})

	t.Run("onError hook can replace the error", func(t *testing.T) {
		reg := tryerr.NewRegistry()
		require.NoError(t, reg.Configure(tryerr.WithOnError(func(e *tryerr.Error) *tryerr.Error {
			return e.With("seen", true)
		})))
		f := tryerr.NewFactory(reg)

		e := f.New("X", "m")
		assert.Equal(t, true, e.Context["seen"])
	})

	t.Run("never panics when an event listener panics", func(t *testing.T) {
		f := newFactory(t)
		f.OnEvent(tryerr.TopicCreated, func(tryerr.Event) {
			panic("hostile listener")
		})

		var received *tryerr.Error
		f.OnEvent(tryerr.TopicCreated, func(ev tryerr.Event) {
			received = ev.Error
		})

		var e *tryerr.Error
		assert.NotPanics(t, func() {
			e = f.New("X", "m")
		})
		assert.Same(t, e, received, "later listeners still run")
	})
}

func TestFactory_Wrap(t *testing.T) {
	t.Run("defaults the message to the cause's message", func(t *testing.T) {
		f := newFactory(t)
		cause := errors.New("connection refused")

		e := f.Wrap("NetworkError", cause)

		assert.Equal(t, "NetworkError", e.Kind)
		assert.Equal(t, "connection refused", e.Message)
		assert.ErrorIs(t, e, cause)
	})

	t.Run("WithMessage overrides the default", func(t *testing.T) {
		f := newFactory(t)
		cause := errors.New("connection refused")

		e := f.Wrap("NetworkError", cause, tryerr.WithMessage("upstream unavailable"))
		assert.Equal(t, "upstream unavailable", e.Message)
		assert.ErrorIs(t, e, cause)
	})

	t.Run("sets the cause even in minimal mode", func(t *testing.T) {
		f := newFactory(t, tryerr.PresetMinimal())
		cause := errors.New("boom")

		e := f.Wrap("X", cause)
		assert.ErrorIs(t, e, cause)
		assert.False(t, e.HasStack())
	})
}

func TestFactory_FromThrown(t *testing.T) {
	f := newFactory(t)

	t.Run("classifies known native error kinds", func(t *testing.T) {
		testCases := []struct {
			name         string
			thrown       any
			expectedKind string
		}{
			{
				name:         "range error",
				thrown:       rangeErr(t),
				expectedKind: "RangeError",
			},
			{
				name:         "syntax error",
				thrown:       syntaxErr(t),
				expectedKind: "SyntaxError",
			},
			{
				name:         "deadline exceeded",
				thrown:       context.DeadlineExceeded,
				expectedKind: "TimeoutError",
			},
			{
				name:         "cancellation",
				thrown:       context.Canceled,
				expectedKind: "CanceledError",
			},
			{
				name:         "failed type assertion",
				thrown:       typeAssertionErr(),
				expectedKind: "TypeError",
			},
			{
				name:         "runtime fault",
				thrown:       runtimeErr(),
				expectedKind: "RuntimeError",
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				e := f.FromThrown(testCase.thrown)
				require.NotNil(t, e)
				assert.Equal(t, testCase.expectedKind, e.Kind)
				assert.NotEmpty(t, e.Message)
			})
		}
	})

	t.Run("plain errors fall back to the default type", func(t *testing.T) {
		e := f.FromThrown(errors.New("plain"))
		assert.Equal(t, "Error", e.Kind)
		assert.Equal(t, "plain", e.Message)
	})

	t.Run("strings map to StringError", func(t *testing.T) {
		e := f.FromThrown("str")
		assert.Equal(t, "StringError", e.Kind)
		assert.Equal(t, "str", e.Message)
	})

	t.Run("nil maps to UnknownError and does not panic", func(t *testing.T) {
		var e *tryerr.Error
		assert.NotPanics(t, func() {
			e = f.FromThrown(nil)
		})
		require.NotNil(t, e)
		assert.Equal(t, "UnknownError", e.Kind)
		assert.NotEmpty(t, e.Message)
	})

	t.Run("arbitrary values map to UnknownError", func(t *testing.T) {
		for _, v := range []any{42, 3.14, struct{ A int }{A: 1}, []byte("bytes")} {
			e := f.FromThrown(v)
			require.NotNil(t, e)
			assert.Equal(t, "UnknownError", e.Kind)
			assert.NotEmpty(t, e.Message)
		}
	})

	t.Run("a value with a panicking Stringer still classifies", func(t *testing.T) {
		var e *tryerr.Error
		assert.NotPanics(t, func() {
			e = f.FromThrown(panickyStringer{})
		})
		require.NotNil(t, e)
		assert.Equal(t, "UnknownError", e.Kind)
		assert.NotEmpty(t, e.Message)
	})

	t.Run("an existing error value passes through unchanged", func(t *testing.T) {
		orig := f.New("ValidationError", "bad input")
		assert.Same(t, orig, f.FromThrown(orig))
	})

	t.Run("an existing error value with extra context is copied, not mutated", func(t *testing.T) {
		orig := f.New("ValidationError", "bad input")

		e := f.FromThrown(orig, tryerr.WithKV("request_id", "r-1"))
		assert.NotSame(t, orig, e)
		assert.Equal(t, "r-1", e.Context["request_id"])
		assert.NotContains(t, orig.Context, "request_id")
	})
}

func TestFactory_FromPanic(t *testing.T) {
	t.Run("marks the context and classifies the recovered value", func(t *testing.T) {
		f := newFactory(t)

		e := func() (e *tryerr.Error) {
			defer func() {
				if r := recover(); r != nil {
					e = f.FromPanic(r)
				}
			}()
			panic("something broke")
		}()

		require.NotNil(t, e)
		assert.Equal(t, "StringError", e.Kind)
		assert.Equal(t, "something broke", e.Message)
		assert.Equal(t, true, e.Context["panic"])
	})
}

func TestFactory_Pool(t *testing.T) {
	poolSettings := tryerr.Use(config.Map{
		"performance": map[string]any{
			"pool_enabled": true,
			"pool_size":    2,
		},
	})

	t.Run("released shells are reused", func(t *testing.T) {
		f := newFactory(t, poolSettings)

		e := f.New("X", "m")
		f.Release(e)

		f.New("Y", "n")

		stats, ok := f.PoolStats()
		require.True(t, ok)
		assert.Equal(t, uint64(1), stats.Hits)
		assert.Equal(t, uint64(1), stats.Misses)
	})

	t.Run("free list settles at capacity", func(t *testing.T) {
		f := newFactory(t, poolSettings)

		a := f.New("A", "1")
		b := f.New("B", "2")
		c := f.New("C", "3")
		f.Release(a)
		f.Release(b)
		f.Release(c)

		stats, ok := f.PoolStats()
		require.True(t, ok)
		assert.Equal(t, 2, stats.Free, "third shell is discarded")
		assert.Equal(t, 0, stats.Active)
		assert.Equal(t, uint64(3), stats.Misses)
	})

	t.Run("pool size is read once, at the first pooled acquisition", func(t *testing.T) {
		reg := tryerr.NewRegistry()
		require.NoError(t, reg.Configure(poolSettings))
		f := tryerr.NewFactory(reg)

		f.Release(f.New("X", "m"))

		require.NoError(t, reg.Configure(tryerr.Use(config.Map{
			"performance": map[string]any{"pool_size": 8},
		})))
		f.Release(f.New("Y", "n"))

		stats, ok := f.PoolStats()
		require.True(t, ok)
		assert.Equal(t, 2, stats.Capacity, "existing pool is not resized")
	})

	t.Run("releasing a non-pooled error is a no-op", func(t *testing.T) {
		f := newFactory(t)

		e := f.New("X", "m")
		assert.NotPanics(t, func() { f.Release(e) })

		_, ok := f.PoolStats()
		assert.False(t, ok)
	})
}

func TestFactory_Use(t *testing.T) {
	t.Run("stages run in registration order on every created error", func(t *testing.T) {
		f := newFactory(t)

		var order []string
		f.Use(func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
			order = append(order, "first")
			return next(e)
		})
		f.Use(func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
			order = append(order, "second")
			return next(e)
		})

		f.New("X", "m")
		assert.Equal(t, []string{"first", "second"}, order)
	})

	t.Run("a transforming pipeline emits error-transformed before error-created", func(t *testing.T) {
		f := newFactory(t)
		f.Use(func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
			return next(e.With("transformed", true))
		})

		var topics []string
		f.OnEvent(tryerr.TopicTransformed, func(ev tryerr.Event) {
			topics = append(topics, ev.Topic)
		})
		f.OnEvent(tryerr.TopicCreated, func(ev tryerr.Event) {
			topics = append(topics, ev.Topic)
		})

		e := f.New("X", "m")
		assert.Equal(t, true, e.Context["transformed"])
		assert.Equal(t, []string{tryerr.TopicTransformed, tryerr.TopicCreated}, topics)
	})

	t.Run("a panicking stage yields its input and halts downstream", func(t *testing.T) {
		f := newFactory(t)

		downstreamRan := false
		f.Use(
			func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
				return next(e.With("upstream", true))
			},
			func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
				panic("hostile stage")
			},
			func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
				downstreamRan = true
				return next(e.With("downstream", true))
			},
		)

		var e *tryerr.Error
		assert.NotPanics(t, func() {
			e = f.New("X", "m")
		})
		assert.Equal(t, true, e.Context["upstream"])
		assert.NotContains(t, e.Context, "downstream")
		assert.False(t, downstreamRan)
	})

	t.Run("removed stages no longer run", func(t *testing.T) {
		f := newFactory(t)

		calls := 0
		remove := f.Use(func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
			calls++
			return next(e)
		})

		f.New("X", "m")
		remove()
		remove()
		f.New("Y", "n")

		assert.Equal(t, 1, calls)
	})
}

func TestFactory_ConfigChangedEvents(t *testing.T) {
	t.Run("registry changes surface as config-changed events", func(t *testing.T) {
		reg := tryerr.NewRegistry()
		f := tryerr.NewFactory(reg)

		var versions []uint64
		f.OnEvent(tryerr.TopicConfigChanged, func(ev tryerr.Event) {
			assert.Nil(t, ev.Error)
			versions = append(versions, ev.Version)
		})

		require.NoError(t, reg.Configure(tryerr.PresetMinimal()))
		require.NoError(t, reg.Configure(tryerr.PresetDevelopment()))

		assert.Equal(t, []uint64{1, 2}, versions)
	})

	t.Run("a closed factory stops republishing registry changes", func(t *testing.T) {
		reg := tryerr.NewRegistry()
		f := tryerr.NewFactory(reg)

		var events int
		f.OnEvent(tryerr.TopicConfigChanged, func(tryerr.Event) { events++ })

		require.NoError(t, reg.Configure(tryerr.PresetMinimal()))
		f.Close()
		f.Close()
		require.NoError(t, reg.Configure(tryerr.PresetDevelopment()))

		assert.Equal(t, 1, events)
		assert.Equal(t, uint64(2), reg.Version(), "registry itself is unaffected")

		e := f.New("X", "m")
		assert.True(t, e.HasStack(), "factory still tracks the latest snapshot")
	})
}

func rangeErr(t *testing.T) error {
	t.Helper()
	_, err := strconv.ParseInt("99999999999999999999999999", 10, 64)
	require.Error(t, err)
	return err
}

func syntaxErr(t *testing.T) error {
	t.Helper()
	_, err := strconv.Atoi("not-a-number")
	require.Error(t, err)
	return err
}

func typeAssertionErr() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = r.(error)
		}
	}()
	var v any = "string"
	_ = v.(int)
	return nil
}

func runtimeErr() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = r.(error)
		}
	}()
	var s []int
	_ = s[3] //nolint:govet // deliberate out-of-bounds for classification
	return nil
}

type panickyStringer struct{}

func (panickyStringer) String() string {
	panic("hostile stringer")
}
