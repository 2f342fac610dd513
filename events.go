// Copyright (c) 2025 TryErr Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package tryerr

// Lifecycle topics published by a [Factory].
const (
	// TopicCreated is published once per error leaving the factory.
	TopicCreated = "error-created"

	// TopicTransformed is published when the middleware pipeline
	// returned a different value than it was given.
	TopicTransformed = "error-transformed"

	// TopicConfigChanged is published after every successful Configure
	// on the factory's registry.
	TopicConfigChanged = "config-changed"
)

// Event is the payload delivered to lifecycle listeners.
type Event struct {
	// Topic names the lifecycle event.
	Topic string

	// Error is the subject error. Nil for [TopicConfigChanged].
	Error *Error

	// Version is the new configuration version. Only set for
	// [TopicConfigChanged].
	Version uint64
}
