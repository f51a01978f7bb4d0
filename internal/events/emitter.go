package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEmitter is a process-local implementation of Emitter that keeps
// registered handlers in memory and dispatches events to them in
// registration order. Dispatch is synchronous from the caller's goroutine;
// handlers are expected to hand slow work off themselves.
type InMemoryEmitter struct {
	handlers []Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryEmitter creates a new InMemoryEmitter.
func NewInMemoryEmitter(logger *slog.Logger) *InMemoryEmitter {
	return &InMemoryEmitter{
		handlers: make([]Handler, 0),
		logger:   logger.With("component", "task_event_emitter"),
	}
}

// RegisterHandler adds a handler to receive all future events.
func (e *InMemoryEmitter) RegisterHandler(handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered task event handler", "handler_count", len(e.handlers))
}

// Emit publishes the event to every registered handler. Handler outcomes
// are not observed; delivery is fire-and-forget.
func (e *InMemoryEmitter) Emit(ctx context.Context, event *TaskEvent) {
	e.mu.RLock()
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	e.logger.Debug("emitting task event",
		"event_id", event.ID,
		"kind", event.Kind,
		"task_id", event.TaskID,
		"handler_count", len(handlers))

	for _, handler := range handlers {
		handler.HandleTaskEvent(ctx, event)
	}
}
