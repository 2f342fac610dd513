// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package bitflags packs the feature toggles derived from a configuration
// snapshot into a single integer so the error factory can branch on them
// without touching the snapshot struct.
package bitflags

// Flags is a packed set of feature toggles.
type Flags uint32

const (
	// CaptureStack enables stack trace capture at error creation.
	CaptureStack Flags = 1 << iota

	// IncludeSource enables deriving a file:line origin from the stack.
	IncludeSource

	// SkipTimestamp omits the creation timestamp.
	SkipTimestamp

	// SkipContext omits context processing entirely.
	SkipContext

	// Minimal bypasses all diagnostic capture regardless of other flags.
	Minimal

	// DeepClone deep-clones context payloads instead of shallow copying.
	DeepClone

	// Pool acquires error shells from the shared pool.
	Pool

	// Development enables verbose internal logging.
	Development
)

// Has reports whether every flag in mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// With returns f with every flag in mask set.
func (f Flags) With(mask Flags) Flags {
	return f | mask
}

// Without returns f with every flag in mask cleared.
func (f Flags) Without(mask Flags) Flags {
	return f &^ mask
}
