package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// ListTasksParams carries the pagination and filter options for listing
// tasks. Page and Limit are 1-based; a nil Status means no filtering.
type ListTasksParams struct {
	Page   int
	Limit  int
	Status *domain.TaskStatus
}

// UpdateTaskParams carries the partial update for a task. Nil fields are
// left untouched; provided fields overwrite the stored values
// (last-writer-wins, no conflict detection).
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity wrapping the domain validation error if the
	// task data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns one page of tasks ordered by creation time descending,
	// optionally filtered by status, together with the total number of
	// matching tasks across all pages.
	List(ctx context.Context, params ListTasksParams) ([]domain.Task, int, error)

	// Update applies a partial update to an existing task and returns the
	// updated record. Only non-nil fields of params are written; updated_at
	// is always bumped. Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, id uuid.UUID, params UpdateTaskParams) (*domain.Task, error)

	// Delete removes a task from the store.
	// Returns ErrTaskNotFound if the task does not exist, so deleting the
	// same id twice fails the second time.
	Delete(ctx context.Context, id uuid.UUID) error
}
