package service

import (
	"context"
	"log/slog"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore for tests.
type fakeTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	t := *task
	s.tasks[t.ID] = &t
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	t := *task
	return &t, nil
}

func (s *fakeTaskStore) List(
	ctx context.Context,
	params store.ListTasksParams,
) ([]domain.Task, int, error) {
	var matching []domain.Task
	for _, task := range s.tasks {
		if params.Status != nil && task.Status != *params.Status {
			continue
		}
		matching = append(matching, *task)
	}
	sort.Slice(matching, func(i, j int) bool {
		return matching[i].CreatedAt.After(matching[j].CreatedAt)
	})

	total := len(matching)
	offset := (params.Page - 1) * params.Limit
	if offset >= total {
		return []domain.Task{}, total, nil
	}
	end := offset + params.Limit
	if end > total {
		end = total
	}
	return matching[offset:end], total, nil
}

func (s *fakeTaskStore) Update(
	ctx context.Context,
	id uuid.UUID,
	params store.UpdateTaskParams,
) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	t := *task
	return &t, nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	events []*events.TaskEvent
}

func (e *recordingEmitter) Emit(ctx context.Context, event *events.TaskEvent) {
	e.events = append(e.events, event)
}

func newTestTaskService(t *testing.T) (TaskService, *fakeTaskStore, *recordingEmitter) {
	t.Helper()
	taskStore := newFakeTaskStore()
	emitter := &recordingEmitter{}
	svc, err := NewTaskService(taskStore, emitter, slog.Default())
	require.NoError(t, err)
	return svc, taskStore, emitter
}

func TestNewTaskServiceRequiresDependencies(t *testing.T) {
	_, err := NewTaskService(nil, &recordingEmitter{}, slog.Default())
	assert.Error(t, err)

	_, err = NewTaskService(newFakeTaskStore(), nil, slog.Default())
	assert.Error(t, err)

	_, err = NewTaskService(newFakeTaskStore(), &recordingEmitter{}, nil)
	assert.Error(t, err)
}

func TestCreateTaskEmitsCreatedEvent(t *testing.T) {
	svc, taskStore, emitter := newTestTaskService(t)

	task, err := svc.CreateTask(context.Background(), "write docs", "the API ones")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, task.Status)

	stored, err := taskStore.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "write docs", stored.Title)

	require.Len(t, emitter.events, 1)
	assert.Equal(t, events.TaskCreated, emitter.events[0].Kind)
	assert.Equal(t, task.ID, emitter.events[0].TaskID)
	require.NotNil(t, emitter.events[0].Task)
}

func TestCreateTaskRejectsInvalidInputWithoutEvent(t *testing.T) {
	svc, _, emitter := newTestTaskService(t)

	_, err := svc.CreateTask(context.Background(), "", "")
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
	assert.Empty(t, emitter.events, "no event may be emitted for a failed mutation")
}

func TestUpdateTaskEmitsUpdatedEvent(t *testing.T) {
	svc, _, emitter := newTestTaskService(t)

	task, err := svc.CreateTask(context.Background(), "write docs", "")
	require.NoError(t, err)

	status := domain.TaskStatusDone
	updated, err := svc.UpdateTask(context.Background(), task.ID, store.UpdateTaskParams{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, updated.Status)

	require.Len(t, emitter.events, 2)
	assert.Equal(t, events.TaskUpdated, emitter.events[1].Kind)
}

func TestUpdateMissingTaskFailsWithoutEvent(t *testing.T) {
	svc, _, emitter := newTestTaskService(t)

	title := "new title"
	_, err := svc.UpdateTask(context.Background(), uuid.New(), store.UpdateTaskParams{Title: &title})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.Empty(t, emitter.events)
}

func TestDeleteTaskEmitsDeletedEventAndIsNotIdempotent(t *testing.T) {
	svc, _, emitter := newTestTaskService(t)

	task, err := svc.CreateTask(context.Background(), "short lived", "")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(context.Background(), task.ID))
	require.Len(t, emitter.events, 2)
	assert.Equal(t, events.TaskDeleted, emitter.events[1].Kind)
	assert.Equal(t, task.ID, emitter.events[1].TaskID)
	assert.Nil(t, emitter.events[1].Task, "deletion events carry only the id")

	// Second delete of the same id reports NotFound.
	err = svc.DeleteTask(context.Background(), task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.Len(t, emitter.events, 2)
}

func TestListTasksPassthrough(t *testing.T) {
	svc, _, _ := newTestTaskService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateTask(context.Background(), "task", "")
		require.NoError(t, err)
	}

	tasks, total, err := svc.ListTasks(context.Background(), store.ListTasksParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, tasks, 2)
}
