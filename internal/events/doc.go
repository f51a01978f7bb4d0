// Package events defines the task lifecycle events and the in-process
// emitter used to decouple task mutations from realtime push delivery.
// The task service emits events; the websocket hub consumes them. Delivery
// is best-effort and carries no durability or retry semantics.
package events
