// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"os"
	"strings"
)

// Env represents a Source where its underlying values are extracted from
// environment variables. The registry never reads the environment itself;
// this source exists for setup helpers that bind a process environment to
// a configuration profile.
type Env struct {
	prefix  string
	environ func() []string
}

// FromEnv returns a Source which will apply its config from the
// environment variables of the current process. Only variables starting
// with prefix are considered; the prefix is stripped, the remainder is
// lowercased, and a double underscore delimits nesting, e.g. with prefix
// "TRYERR_" the variable TRYERR_PERFORMANCE__POOL_SIZE=32 sets
// performance.pool_size.
func FromEnv(prefix string) Env {
	return Env{
		prefix:  prefix,
		environ: os.Environ,
	}
}

// Apply implements the Source interface.
func (src Env) Apply(store Store) error {
	for _, pair := range src.environ() {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if src.prefix != "" {
			k, ok = strings.CutPrefix(k, src.prefix)
			if !ok {
				continue
			}
		}

		key := strings.ToLower(k)
		key = strings.ReplaceAll(key, "__", ".")
		err := store.Set(key, v)
		if err != nil {
			return err
		}
	}
	return nil
}
