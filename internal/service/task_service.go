// Package service provides the application-level services sitting between
// the HTTP handlers and the stores.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskService provides task CRUD operations and emits a lifecycle event
// after every successful mutation. Event delivery is fire-and-forget: the
// mutation's outcome never depends on it.
type TaskService interface {
	// CreateTask creates a new task in the PENDING status.
	CreateTask(ctx context.Context, title, description string) (*domain.Task, error)

	// GetTask retrieves a task by its ID.
	// Returns store.ErrTaskNotFound if it does not exist.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks returns one page of tasks plus the total matching count.
	ListTasks(ctx context.Context, params store.ListTasksParams) ([]domain.Task, int, error)

	// UpdateTask applies a partial update to a task.
	// Returns store.ErrTaskNotFound if it does not exist.
	UpdateTask(ctx context.Context, id uuid.UUID, params store.UpdateTaskParams) (*domain.Task, error)

	// DeleteTask removes a task.
	// Returns store.ErrTaskNotFound if it does not exist; a second delete
	// of the same id therefore fails.
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// taskServiceImpl implements TaskService.
type taskServiceImpl struct {
	taskStore store.TaskStore
	emitter   events.Emitter
	logger    *slog.Logger
}

// NewTaskService creates a TaskService with the given dependencies.
func NewTaskService(
	taskStore store.TaskStore,
	emitter events.Emitter,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("task store is required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("event emitter is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		emitter:   emitter,
		logger:    logger.With("component", "task_service"),
	}, nil
}

func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	title, description string,
) (*domain.Task, error) {
	task, err := domain.NewTask(title, description)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Debug("task created", "task_id", task.ID)
	s.emitter.Emit(ctx, events.NewTaskEvent(events.TaskCreated, task))

	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.taskStore.GetByID(ctx, id)
}

func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	params store.ListTasksParams,
) ([]domain.Task, int, error) {
	return s.taskStore.List(ctx, params)
}

func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	params store.UpdateTaskParams,
) (*domain.Task, error) {
	task, err := s.taskStore.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("task updated", "task_id", task.ID)
	s.emitter.Emit(ctx, events.NewTaskEvent(events.TaskUpdated, task))

	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := s.taskStore.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Debug("task deleted", "task_id", id)
	s.emitter.Emit(ctx, events.NewTaskDeletedEvent(id))

	return nil
}
