// Package events provides the profile lifecycle events and an in-process
// emitter that fans them out to registered handlers.
//
// Services emit events without knowing which handlers consume them. The
// primary components are:
//   - Event: a typed, timestamped envelope with a JSON payload
//   - EventHandler: interface for components that consume events
//   - EventEmitter: interface for components that publish events
//   - AuditLogHandler: writes every event to the structured log
package events
