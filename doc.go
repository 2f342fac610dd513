// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package tryerr is a configurable error-value library: instead of
// panicking, operations return a structured [Error] produced by a factory
// that is cheap on the success path and rich (stack traces, source
// location, context) on the failure path.
//
// How much diagnostic work each creation performs is governed by a
// versioned, live-reconfigurable [Registry]:
//
//	tryerr.Configure(tryerr.PresetDevelopment())
//
//	err := tryerr.New("ValidationError", "email is required",
//		tryerr.WithKV("field", "email"),
//	)
//
// Errors flow through an ordered middleware pipeline and are announced on
// a synchronous event emitter; both isolate panicking extensions so a
// misbehaving hook can never crash a caller. Callers needing stable
// behavior while the process-wide configuration changes should use an
// isolated [Scope] instead of the package-level functions.
package tryerr
