// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package middleware provides ready-made pipeline stages: enrichment,
// filtering, circuit breaking and OpenTelemetry observation.
package middleware

import (
	"context"

	"github.com/tryerr-io/tryerr"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/tryerr-io/tryerr/middleware"

type observeOptions struct {
	spans bool
}

// ObserveOption configures the [Observe] stage.
type ObserveOption func(*observeOptions)

// ObserveSpans additionally records one short span per observed error,
// carrying the error as a span event. Off by default since a span per
// error is only affordable at development-grade error rates.
func ObserveSpans() ObserveOption {
	return func(o *observeOptions) {
		o.spans = true
	}
}

// Observe returns a stage that counts every error flowing through the
// pipeline on the "tryerr.errors.created" counter, labeled by kind. The
// error value is never modified.
func Observe(opts ...ObserveOption) tryerr.Middleware {
	var o observeOptions
	for _, opt := range opts {
		opt(&o)
	}

	meter := otel.Meter(instrumentationName)
	counter, err := meter.Int64Counter(
		"tryerr.errors.created",
		metric.WithDescription("Number of errors produced by the factory."),
	)
	if err != nil {
		otel.Handle(err)
	}

	tracer := otel.Tracer(instrumentationName)

	return func(e *tryerr.Error, next tryerr.Next) *tryerr.Error {
		out := next(e)
		if out == nil {
			return out
		}

		ctx := context.Background()
		kind := attribute.String("tryerr.kind", out.Kind)
		if counter != nil {
			counter.Add(ctx, 1, metric.WithAttributes(kind))
		}

		if o.spans {
			_, span := tracer.Start(
				ctx,
				"tryerr.Observe",
				trace.WithAttributes(kind),
			)
			span.RecordError(out)
			span.End()
		}
		return out
	}
}
