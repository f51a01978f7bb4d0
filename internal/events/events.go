package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Task lifecycle event kinds. These names are also the event names pushed
// to realtime clients.
const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// TaskEvent describes one task mutation. For created/updated events Task
// carries the affected record; for deleted events only TaskID is set.
type TaskEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Kind is one of TaskCreated, TaskUpdated, TaskDeleted
	Kind string `json:"kind"`

	// Task is the affected task; nil for deletions
	Task *domain.Task `json:"task,omitempty"`

	// TaskID identifies the affected task; always set
	TaskID uuid.UUID `json:"task_id"`

	// OccurredAt is the timestamp when the event was created
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTaskEvent creates a created/updated event for the given task.
func NewTaskEvent(kind string, task *domain.Task) *TaskEvent {
	return &TaskEvent{
		ID:         uuid.New(),
		Kind:       kind,
		Task:       task,
		TaskID:     task.ID,
		OccurredAt: time.Now().UTC(),
	}
}

// NewTaskDeletedEvent creates a deletion event carrying only the task id.
func NewTaskDeletedEvent(taskID uuid.UUID) *TaskEvent {
	return &TaskEvent{
		ID:         uuid.New(),
		Kind:       TaskDeleted,
		TaskID:     taskID,
		OccurredAt: time.Now().UTC(),
	}
}

// Handler is implemented by components that react to task events (e.g. the
// realtime hub). Handlers must not block: delivery is best-effort and the
// emitting mutation does not wait for them.
type Handler interface {
	// HandleTaskEvent processes the given event.
	HandleTaskEvent(ctx context.Context, event *TaskEvent)
}

// Emitter is implemented by components that publish task events. Services
// emit without knowledge of the registered handlers; emission never fails
// and never reports delivery outcomes.
type Emitter interface {
	// Emit publishes the given event to all registered handlers.
	Emit(ctx context.Context, event *TaskEvent)
}
