// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

import (
	"log/slog"

	"github.com/tryerr-io/tryerr/internal/try"
)

// DefaultSerializer emits the full wire shape: type, message and every
// present optional field, with causes rendered recursively.
func DefaultSerializer(e *Error) map[string]any {
	if e == nil {
		return nil
	}

	out := map[string]any{
		"type":    e.Kind,
		"message": e.Message,
	}
	if s := e.Stack(); s != "" {
		out["stack"] = s
	}
	if s := e.Source(); s != "" {
		out["source"] = s
	}
	if !e.Timestamp.IsZero() {
		out["timestamp"] = e.Timestamp.UnixMilli()
	}
	if e.Context != nil {
		out["context"] = e.Context
	}
	if e.Cause != nil {
		if te, ok := e.Cause.(*Error); ok {
			out["cause"] = DefaultSerializer(te)
		} else {
			out["cause"] = map[string]any{
				"type":    KindError,
				"message": e.Cause.Error(),
			}
		}
	}
	return out
}

// CompactSerializer emits only type, message, source and timestamp. Stack
// traces and context payloads never reach the output, which suits
// production log shipping.
func CompactSerializer(e *Error) map[string]any {
	if e == nil {
		return nil
	}

	out := map[string]any{
		"type":    e.Kind,
		"message": e.Message,
	}
	if s := e.Source(); s != "" {
		out["source"] = s
	}
	if !e.Timestamp.IsZero() {
		out["timestamp"] = e.Timestamp.UnixMilli()
	}
	return out
}

// Serialize renders e through the active configuration's serializer, or
// [DefaultSerializer] when none is set. A panicking custom serializer is
// logged and the default shape is returned instead.
func (f *Factory) Serialize(e *Error) map[string]any {
	if e == nil {
		return nil
	}

	cfg := f.reg.Snapshot()
	if cfg.Serializer == nil {
		return DefaultSerializer(e)
	}

	var out map[string]any
	err := try.Call(func() {
		out = cfg.Serializer(e)
	})
	if err != nil {
		f.log.Warn("serializer panicked", slog.Any("error", err))
		return DefaultSerializer(e)
	}
	return out
}
