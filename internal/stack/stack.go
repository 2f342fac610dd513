// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package stack captures bounded program counter traces and defers the
// expensive frame resolution work until a trace is actually rendered.
package stack

import (
	"fmt"
	"runtime"
	"strings"
)

const defaultLimit = 64

// Trace is an immutable captured call stack. The zero value is an empty
// trace which formats to the empty string.
type Trace struct {
	pcs []uintptr
}

// Capture records up to limit frames, skipping skip frames on top of the
// internal accounting. skip 0 places the first frame at Capture's caller.
// A non-positive limit falls back to a conservative default.
func Capture(skip, limit int) Trace {
	if limit <= 0 {
		limit = defaultLimit
	}

	// +2 skips runtime.Callers and Capture itself.
	pcs := make([]uintptr, limit)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return Trace{}
	}
	return Trace{pcs: pcs[:n]}
}

// Empty reports whether no frames were captured.
func (t Trace) Empty() bool {
	return len(t.pcs) == 0
}

// Depth returns the number of captured program counters. Inlined frames
// may expand to more rendered frames than Depth reports.
func (t Trace) Depth() int {
	return len(t.pcs)
}

// Format resolves the captured program counters into a multi-line,
// human-readable trace. Resolution handles inlined frames via
// runtime.CallersFrames.
func (t Trace) Format() string {
	if len(t.pcs) == 0 {
		return ""
	}

	var sb strings.Builder
	frames := runtime.CallersFrames(t.pcs)
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Origin returns the "file:line" of the first frame whose function does not
// match any of the given package prefixes. It is used to point at the call
// site that created an error rather than at library internals. Returns ""
// for an empty trace or when every frame is filtered out.
func (t Trace) Origin(libraryPrefixes ...string) string {
	if len(t.pcs) == 0 {
		return ""
	}

	frames := runtime.CallersFrames(t.pcs)
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !matchesAny(frame.Function, libraryPrefixes) {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if !more {
			return ""
		}
	}
}

func matchesAny(function string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(function, p) {
			return true
		}
	}
	return false
}
