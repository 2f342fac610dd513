// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

import (
	"encoding/json"
	"time"

	"github.com/tryerr-io/tryerr/lazy"
)

// Error is the canonical failure value. It is returned, never panicked.
//
// An Error is an immutable snapshot once it leaves the factory: collaborators
// that want to attach additional data must work on a copy (see [Error.With]),
// since instances may be pooled and shared. Stack and source resolution are
// deferred until first read.
type Error struct {
	// Kind is the discriminant tag, e.g. "ValidationError". Immutable
	// once created.
	Kind string

	// Message is the human readable failure description.
	Message string

	// Timestamp is the creation time. Zero when timestamps are skipped.
	Timestamp time.Time

	// Context is an arbitrary debug payload. Nil when context is skipped.
	Context map[string]any

	// Cause chains to the originating failure, if any.
	Cause error

	stack  *lazy.Cell[string]
	source *lazy.Cell[string]
	pooled bool
}

// Error implements the [builtin.error] interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	if e.Kind == "" {
		return e.Message
	}
	return e.Kind + ": " + e.Message
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e *Error) Unwrap() error {
	return e.Cause
}

// Stack returns the formatted stack trace, resolving it on first call.
// Returns "" when stack capture was disabled at creation.
func (e *Error) Stack() string {
	if e.stack == nil {
		return ""
	}
	return e.stack.Get()
}

// HasStack reports whether a stack trace was captured, without forcing
// its resolution.
func (e *Error) HasStack() bool {
	return e.stack != nil
}

// StackEvaluated reports whether the captured stack has been resolved yet.
func (e *Error) StackEvaluated() bool {
	return e.stack != nil && e.stack.Evaluated()
}

// Source returns the "file:line" of the first non-library frame, resolving
// it on first call. Returns "" when source derivation was disabled.
func (e *Error) Source() string {
	if e.source == nil {
		return ""
	}
	return e.source.Get()
}

// With returns a copy of e with the given context key set. The receiver is
// never mutated; pooled or shared instances stay intact.
func (e *Error) With(key string, value any) *Error {
	n := e.clone()
	if n.Context == nil {
		n.Context = make(map[string]any, 1)
	}
	n.Context[key] = value
	return n
}

func (e *Error) clone() *Error {
	n := &Error{
		Kind:      e.Kind,
		Message:   e.Message,
		Timestamp: e.Timestamp,
		Cause:     e.Cause,
		stack:     e.stack,
		source:    e.source,
	}
	if e.Context != nil {
		n.Context = make(map[string]any, len(e.Context))
		for k, v := range e.Context {
			n.Context[k] = v
		}
	}
	return n
}

// reset clears every field so the shell can re-enter the pool.
func (e *Error) reset() {
	*e = Error{}
}

type wireError struct {
	Type      string          `json:"type"`
	Message   string          `json:"message"`
	Stack     string          `json:"stack,omitempty"`
	Source    string          `json:"source,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Context   map[string]any  `json:"context,omitempty"`
	Cause     json.RawMessage `json:"cause,omitempty"`
}

// MarshalJSON emits the wire shape
// {type, message, stack?, source?, timestamp?, context?, cause?}.
// Omitted fields are dropped entirely. A cause that is itself an *Error is
// rendered recursively; any other error renders as {type, message}.
func (e *Error) MarshalJSON() ([]byte, error) {
	w := wireError{
		Type:    e.Kind,
		Message: e.Message,
		Stack:   e.Stack(),
		Source:  e.Source(),
		Context: e.Context,
	}
	if !e.Timestamp.IsZero() {
		w.Timestamp = e.Timestamp.UnixMilli()
	}
	if e.Cause != nil {
		cause, err := marshalCause(e.Cause)
		if err != nil {
			return nil, err
		}
		w.Cause = cause
	}
	return json.Marshal(w)
}

func marshalCause(cause error) (json.RawMessage, error) {
	if te, ok := cause.(*Error); ok {
		return json.Marshal(te)
	}
	return json.Marshal(map[string]string{
		"type":    KindError,
		"message": cause.Error(),
	})
}

// UnmarshalJSON restores an Error from its wire shape. Stack and source
// are restored as already-resolved values; a cause is restored as a
// nested *Error.
func (e *Error) UnmarshalJSON(data []byte) error {
	var w wireError
	err := json.Unmarshal(data, &w)
	if err != nil {
		return err
	}

	*e = Error{
		Kind:    w.Type,
		Message: w.Message,
		Context: w.Context,
	}
	if w.Stack != "" {
		e.stack = lazy.Resolved(w.Stack)
	}
	if w.Source != "" {
		e.source = lazy.Resolved(w.Source)
	}
	if w.Timestamp != 0 {
		e.Timestamp = time.UnixMilli(w.Timestamp).UTC()
	}
	if len(w.Cause) > 0 {
		var cause Error
		err := json.Unmarshal(w.Cause, &cause)
		if err != nil {
			return err
		}
		e.Cause = &cause
	}
	return nil
}
