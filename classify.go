// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"runtime"
	"strconv"

	"github.com/tryerr-io/tryerr/internal/intern"
)

// Well-known kind tags produced by the classifier.
const (
	// KindError is the fallback tag for plain errors with no better match.
	KindError = "Error"

	// KindUnknown tags values that are not errors and not strings,
	// including nil.
	KindUnknown = "UnknownError"

	// KindString tags plain string failure values.
	KindString = "StringError"

	// KindType tags type mismatches: failed type assertions and JSON
	// values decoded into an incompatible Go type.
	KindType = "TypeError"

	// KindRange tags out-of-range numeric conversions.
	KindRange = "RangeError"

	// KindSyntax tags malformed input: numeric parse failures and JSON
	// syntax errors.
	KindSyntax = "SyntaxError"

	// KindRuntime tags runtime faults such as nil dereferences and
	// out-of-bounds indexing surfaced as runtime.Error.
	KindRuntime = "RuntimeError"

	// KindTimeout tags deadline expirations.
	KindTimeout = "TimeoutError"

	// KindCanceled tags context cancellations.
	KindCanceled = "CanceledError"

	// KindNetwork tags non-timeout network failures.
	KindNetwork = "NetworkError"
)

func init() {
	intern.Preload(
		KindError,
		KindUnknown,
		KindString,
		KindType,
		KindRange,
		KindSyntax,
		KindRuntime,
		KindTimeout,
		KindCanceled,
		KindNetwork,
	)
}

// classifyError maps a small, closed set of well-known error shapes to
// kind tags. Returns "" when err matches none of them so the caller can
// fall back to the configured default kind.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, strconv.ErrRange):
		return KindRange
	case errors.Is(err, strconv.ErrSyntax):
		return KindSyntax
	}

	var jsonSyntaxErr *json.SyntaxError
	if errors.As(err, &jsonSyntaxErr) {
		return KindSyntax
	}

	var jsonTypeErr *json.UnmarshalTypeError
	if errors.As(err, &jsonTypeErr) {
		return KindType
	}

	var assertErr *runtime.TypeAssertionError
	if errors.As(err, &assertErr) {
		return KindType
	}

	var runtimeErr runtime.Error
	if errors.As(err, &runtimeErr) {
		return KindRuntime
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}

	return ""
}
