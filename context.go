// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

import (
	"reflect"
	"unicode/utf8"
)

const (
	// circularMarker replaces values whose traversal would revisit a
	// container already on the current path.
	circularMarker = "[circular]"

	// truncationSuffix is appended to context strings cut at the
	// configured maximum size.
	truncationSuffix = "... [truncated]"

	// maxContextDepth bounds traversal of deeply nested payloads.
	maxContextDepth = 32
)

// sanitizeContext copies a caller supplied context payload according to the
// performance settings: string values longer than MaxContextSize are
// truncated, and in deep-clone mode nested maps and slices are copied with
// cycles replaced by a marker instead of recursing forever. It never
// panics for any payload shape.
func sanitizeContext(in map[string]any, perf Performance) map[string]any {
	if in == nil {
		return nil
	}

	maxSize := perf.MaxContextSize
	if maxSize <= 0 {
		maxSize = defaultMaxContextSize
	}

	out := make(map[string]any, len(in))
	if !perf.DeepCloneContext {
		for k, v := range in {
			if s, ok := v.(string); ok {
				out[k] = truncateString(s, maxSize)
				continue
			}
			out[k] = v
		}
		return out
	}

	seen := map[uintptr]bool{
		reflect.ValueOf(in).Pointer(): true,
	}
	for k, v := range in {
		out[k] = deepSanitize(v, maxSize, seen, maxContextDepth)
	}
	return out
}

func deepSanitize(v any, maxSize int, seen map[uintptr]bool, depth int) any {
	if depth <= 0 {
		return circularMarker
	}

	switch x := v.(type) {
	case string:
		return truncateString(x, maxSize)
	case map[string]any:
		if len(x) == 0 {
			return map[string]any{}
		}
		id := reflect.ValueOf(x).Pointer()
		if seen[id] {
			return circularMarker
		}
		seen[id] = true
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = deepSanitize(item, maxSize, seen, depth-1)
		}
		delete(seen, id)
		return out
	case []any:
		if len(x) == 0 {
			return []any{}
		}
		id := reflect.ValueOf(x).Pointer()
		if seen[id] {
			return circularMarker
		}
		seen[id] = true
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = deepSanitize(item, maxSize, seen, depth-1)
		}
		delete(seen, id)
		return out
	default:
		// Other container types are passed through by reference; the
		// sanitizer only walks plain JSON-like payloads.
		return v
	}
}

// truncateString cuts s at maxSize bytes, backing up to the nearest rune
// boundary, and marks the cut.
func truncateString(s string, maxSize int) string {
	if len(s) <= maxSize {
		return s
	}

	cut := maxSize
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationSuffix
}
