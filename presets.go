// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

import "github.com/tryerr-io/tryerr/config"

// Presets are pure, fixed configuration bundles for common profiles. They
// carry no environment coupling; binding a preset to a deployment
// environment is the job of setup helpers outside this package.

// PresetMinimal disables all diagnostic capture. Errors carry only a kind
// and a message. This is the fastest profile, suited to hot loops.
func PresetMinimal() Setting {
	return Use(config.Map{
		"minimal_errors":      true,
		"capture_stack_trace": false,
		"include_source":      false,
		"skip_timestamp":      true,
		"skip_context":        true,
	})
}

// PresetDevelopment captures full diagnostics and enables verbose internal
// logging.
func PresetDevelopment() Setting {
	return Use(config.Map{
		"minimal_errors":      false,
		"capture_stack_trace": true,
		"stack_trace_limit":   defaultStackTraceLimit,
		"include_source":      true,
		"skip_timestamp":      false,
		"skip_context":        false,
		"development_mode":    true,
		"performance": map[string]any{
			"deep_clone_context": true,
		},
	})
}

// PresetProduction keeps timestamps and source locations but drops stack
// traces from both capture and serialized output.
func PresetProduction() Setting {
	return Settings(
		Use(config.Map{
			"minimal_errors":      false,
			"capture_stack_trace": false,
			"include_source":      false,
			"development_mode":    false,
		}),
		WithSerializer(CompactSerializer),
	)
}

// PresetPerformance keeps errors cheap without going fully minimal: no
// stack capture, pooled shells, tightly capped context.
func PresetPerformance() Setting {
	return Use(config.Map{
		"minimal_errors":      false,
		"capture_stack_trace": false,
		"include_source":      false,
		"skip_timestamp":      true,
		"performance": map[string]any{
			"pool_enabled":     true,
			"pool_size":        defaultPoolSize,
			"max_context_size": 256,
		},
	})
}

// PresetTesting captures full diagnostics with deterministic output in
// mind: deep-cloned context and no pooling, so assertions never observe a
// recycled shell.
func PresetTesting() Setting {
	return Use(config.Map{
		"minimal_errors":      false,
		"capture_stack_trace": true,
		"include_source":      true,
		"skip_timestamp":      false,
		"skip_context":        false,
		"performance": map[string]any{
			"pool_enabled":       false,
			"deep_clone_context": true,
		},
	})
}
