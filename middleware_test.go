// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr_test

import (
	"testing"

	"github.com/tryerr-io/tryerr"

	"github.com/stretchr/testify/assert"
)

func appendKind(suffix string) tryerr.Middleware {
	return func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
		out := e.With("trace", suffix)
		out.Kind = e.Kind + suffix
		return next(out)
	}
}

func TestCompose(t *testing.T) {
	t.Run("stages run in declaration order", func(t *testing.T) {
		e := &tryerr.Error{Kind: "E", Message: "m"}

		out := tryerr.Apply(e, appendKind("-a"), appendKind("-b"), appendKind("-c"))
		assert.Equal(t, "E-a-b-c", out.Kind)
	})

	t.Run("composition equals sequential application", func(t *testing.T) {
		a := appendKind("-a")
		b := appendKind("-b")
		c := appendKind("-c")

		e := &tryerr.Error{Kind: "E", Message: "m"}
		composed := tryerr.Apply(e, tryerr.Compose(a, b, c))
		sequential := tryerr.Apply(tryerr.Apply(tryerr.Apply(e, a), b), c)

		assert.Equal(t, sequential.Kind, composed.Kind)
	})

	t.Run("a stage that does not proceed halts the pipeline", func(t *testing.T) {
		halt := func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
			return e.With("halted", true)
		}

		downstreamRan := false
		witness := func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
			downstreamRan = true
			return next(e)
		}

		e := &tryerr.Error{Kind: "E", Message: "m"}
		out := tryerr.Apply(e, appendKind("-a"), halt, witness)

		assert.Equal(t, "E-a", out.Kind)
		assert.Equal(t, true, out.Context["halted"])
		assert.False(t, downstreamRan)
	})

	t.Run("an empty composition is the identity", func(t *testing.T) {
		e := &tryerr.Error{Kind: "E", Message: "m"}
		assert.Same(t, e, tryerr.Apply(e))
	})

	t.Run("a stage can replace the error entirely", func(t *testing.T) {
		replacement := &tryerr.Error{Kind: "Replaced", Message: "swapped"}
		replace := func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
			return next(replacement)
		}

		e := &tryerr.Error{Kind: "E", Message: "m"}
		out := tryerr.Apply(e, replace)
		assert.Same(t, replacement, out)
	})
}
