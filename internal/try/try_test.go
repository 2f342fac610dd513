// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package try

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecover(t *testing.T) {
	t.Run("will update the error ref value", func(t *testing.T) {
		t.Run("if a panic is recovered and the ref is nil", func(t *testing.T) {
			f := func() (err error) {
				defer Recover(&err)
				panic("hello world")
			}

			err := f()

			var perr PanicError
			require.ErrorAs(t, err, &perr)
			assert.NotEmpty(t, perr.Error())
			assert.Equal(t, "hello world", perr.Value)
		})

		t.Run("if a panic is recovered and the ref holds an error", func(t *testing.T) {
			funcErr := errors.New("error value")
			panicErr := errors.New("panic error")
			f := func() (err error) {
				defer Recover(&err)
				err = funcErr
				panic(panicErr)
			}

			err := f()

			assert.ErrorIs(t, err, funcErr)
			assert.ErrorIs(t, err, panicErr)
		})
	})

	t.Run("will not touch the error ref value", func(t *testing.T) {
		t.Run("if no panic occurred", func(t *testing.T) {
			f := func() (err error) {
				defer Recover(&err)
				return nil
			}

			assert.Nil(t, f())
		})
	})
}

func TestPanicError_Unwrap(t *testing.T) {
	t.Run("exposes an error panic value", func(t *testing.T) {
		cause := errors.New("boom")
		err := PanicError{Value: cause}
		assert.ErrorIs(t, err, cause)
	})

	t.Run("returns nil for non-error panic values", func(t *testing.T) {
		err := PanicError{Value: 42}
		assert.Nil(t, err.Unwrap())
	})
}

func TestCall(t *testing.T) {
	t.Run("returns nil when fn does not panic", func(t *testing.T) {
		assert.Nil(t, Call(func() {}))
	})

	t.Run("returns a PanicError when fn panics", func(t *testing.T) {
		err := Call(func() { panic("boom") })

		var perr PanicError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "boom", perr.Value)
	})
}
