// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

// Middleware is an ordered, composable transform stage applied to newly
// created or classified errors.
type Middleware func(*Error, Next) *Error

// Next is the continuation passed to a [Middleware] stage. A stage that
// does not invoke it halts every stage downstream of itself, and the
// pipeline returns whatever that stage produced.
type Next func(*Error) *Error

// Compose combines stages into a single Middleware. Stages run in the
// given order: Compose(a, b, c) applied to E is equivalent to running a
// first, then b, then c, i.e. c(b(a(E))) when every stage proceeds.
func Compose(stages ...Middleware) Middleware {
	return func(e *Error, next Next) *Error {
		var run func(int, *Error) *Error
		run = func(i int, err *Error) *Error {
			if i == len(stages) {
				return next(err)
			}
			return stages[i](err, func(out *Error) *Error {
				return run(i+1, out)
			})
		}
		return run(0, e)
	}
}

// Apply runs e through the composed stages and returns the result. It is
// a convenience for running a pipeline outside a factory; stages are NOT
// panic-isolated here.
func Apply(e *Error, stages ...Middleware) *Error {
	return Compose(stages...)(e, func(out *Error) *Error {
		return out
	})
}
