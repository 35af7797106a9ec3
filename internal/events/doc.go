// Package events provides types and interfaces for an event-driven architecture.
//
// The capture pipeline publishes a writing result event when an attempt is
// submitted. Handlers registered on the emitter consume it without the
// pipeline knowing about them: the repository registers a logging handler
// and, when the assessor is enabled, a handler that queues an assessment
// task. An external scheduler registers its own handler.
//
// The primary components are:
// - Event: a typed message with a JSON payload
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
