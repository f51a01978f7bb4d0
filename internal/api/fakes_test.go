package api

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// fakeUserStore is an in-memory store.UserStore for handler tests.
type fakeUserStore struct {
	byID    map[uuid.UUID]*domain.User
	byEmail map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (s *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return store.ErrEmailExists
	}
	s.byID[user.ID] = user
	s.byEmail[key] = user
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// fakeTaskStore is an in-memory store.TaskStore for handler tests.
type fakeTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
	err   error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.err != nil {
		return s.err
	}
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *fakeTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *fakeTaskStore) List(ctx context.Context, params store.ListTasksParams) ([]domain.Task, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}

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

func (s *fakeTaskStore) Update(ctx context.Context, id uuid.UUID, params store.UpdateTaskParams) (*domain.Task, error) {
	if s.err != nil {
		return nil, s.err
	}
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
	task.UpdatedAt = time.Now().UTC()
	copied := *task
	return &copied, nil
}

func (s *fakeTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// testJWTService returns a deterministic JWT service for handler tests.
func testJWTService() auth.JWTService {
	return auth.NewTestJWTService(
		"handler-test-access-secret", "handler-test-refresh-secret",
		15*time.Minute, 7*24*time.Hour,
		time.Now,
	)
}
