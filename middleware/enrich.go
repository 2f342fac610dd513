// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package middleware

import "github.com/tryerr-io/tryerr"

// Enrich returns a stage that sets the context key on every error flowing
// through, computing the value per error. The incoming error is copied,
// never mutated.
func Enrich(key string, fn func(*tryerr.Error) any) tryerr.Middleware {
	return func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
		return next(e.With(key, fn(e)))
	}
}

// Filter returns a stage that only proceeds downstream for errors matching
// pred. Non-matching errors are returned as-is, skipping every stage after
// the filter.
func Filter(pred func(*tryerr.Error) bool) tryerr.Middleware {
	return func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
		if !pred(e) {
			return e
		}
		return next(e)
	}
}

// KindIs returns a predicate matching errors of the given kind, for use
// with [Filter].
func KindIs(kind string) func(*tryerr.Error) bool {
	return func(e *tryerr.Error) bool {
		return e.Kind == kind
	}
}
