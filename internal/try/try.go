// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package try isolates panics raised by user supplied hooks, listeners and
// middleware stages so a single misbehaving extension can never crash a
// caller of the core.
package try

import (
	"errors"
	"fmt"
)

// PanicError wraps a recovered panic value so it can travel as an error.
type PanicError struct {
	Value any
}

// Error implements the [builtin.error] interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("recovered from panic: %v", e.Value)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
// It returns nil when the panic value was not an error.
func (e PanicError) Unwrap() error {
	err, ok := e.Value.(error)
	if !ok {
		return nil
	}
	return err
}

// Recover converts an in-flight panic into an error assigned through err.
// It must be called directly in a defer statement. If err already holds an
// error the panic is joined onto it.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}

	perr := PanicError{
		Value: r,
	}
	if *err == nil {
		*err = perr
		return
	}
	*err = errors.Join(*err, perr)
}

// Call invokes fn and returns any panic it raised as a PanicError.
func Call(fn func()) (err error) {
	defer Recover(&err)

	fn()
	return nil
}
