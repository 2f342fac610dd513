// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package nooplog provides a slog.Handler which drops every record. It is
// the default handler for all internal logging so the core stays silent
// unless a caller opts in.
package nooplog

import (
	"context"
	"log/slog"
)

type Handler struct{}

func (Handler) Enabled(_ context.Context, _ slog.Level) bool  { return false }
func (Handler) Handle(_ context.Context, _ slog.Record) error { return nil }
func (h Handler) WithAttrs(_ []slog.Attr) slog.Handler        { return h }
func (h Handler) WithGroup(name string) slog.Handler          { return h }
