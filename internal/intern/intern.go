// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package intern deduplicates short, frequently repeated strings such as
// error kind tags. It is a thin wrapper over the runtime's weakly-held
// canonicalization cache, with an optional retained set for tags that are
// known to recur for the lifetime of the process.
package intern

import (
	"sync"
	"unique"
)

var (
	mu       sync.Mutex
	retained []unique.Handle[string]
)

// Intern returns a canonical copy of s. Two equal strings passed through
// Intern share backing storage until the runtime decides neither is needed.
func Intern(s string) string {
	if s == "" {
		return ""
	}
	return unique.Make(s).Value()
}

// Preload pins canonical handles for the given tags so they are never
// evicted. Intended for well-known kind tags registered once at startup.
func Preload(tags ...string) {
	handles := make([]unique.Handle[string], 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		handles = append(handles, unique.Make(tag))
	}

	mu.Lock()
	retained = append(retained, handles...)
	mu.Unlock()
}
