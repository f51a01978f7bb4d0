package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/ws"
)

// memUserStore is an in-memory store.UserStore for wiring tests.
type memUserStore struct {
	users map[string]*domain.User
}

func (s *memUserStore) Create(ctx context.Context, user *domain.User) error {
	if _, exists := s.users[user.Email]; exists {
		return store.ErrEmailExists
	}
	s.users[user.Email] = user
	return nil
}

func (s *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// memTaskStore is an in-memory store.TaskStore for wiring tests.
type memTaskStore struct {
	tasks map[uuid.UUID]*domain.Task
}

func (s *memTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.tasks[task.ID] = task
	return nil
}

func (s *memTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

func (s *memTaskStore) List(ctx context.Context, params store.ListTasksParams) ([]domain.Task, int, error) {
	var out []domain.Task
	for _, task := range s.tasks {
		if params.Status != nil && task.Status != *params.Status {
			continue
		}
		out = append(out, *task)
	}
	return out, len(out), nil
}

func (s *memTaskStore) Update(ctx context.Context, id uuid.UUID, params store.UpdateTaskParams) (*domain.Task, error) {
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
	return task, nil
}

func (s *memTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// newTestApplication wires an application with in-memory stores so the full
// router can be exercised without a database.
func newTestApplication(t *testing.T) *application {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:     8080,
			LogLevel: "error",
		},
		Auth: config.AuthConfig{
			AccessTokenSecret:           "wiring-test-access-secret",
			RefreshTokenSecret:          "wiring-test-refresh-secret",
			AccessTokenLifetimeMinutes:  15,
			RefreshTokenLifetimeMinutes: 7 * 24 * 60,
		},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	userStore := &memUserStore{users: make(map[string]*domain.User)}
	taskStore := &memTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	emitter := events.NewInMemoryEmitter(logger)

	taskService, err := service.NewTaskService(taskStore, emitter, logger)
	require.NoError(t, err)

	hub := ws.NewHub(logger)
	emitter.RegisterHandler(hub)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	return &application{
		config:       cfg,
		logger:       logger,
		userStore:    userStore,
		taskStore:    taskStore,
		jwtService:   jwtService,
		sessions:     auth.NewSessionManager(userStore, jwtService, hasher, hasher),
		taskService:  taskService,
		eventEmitter: emitter,
		hub:          hub,
	}
}

func request(t *testing.T, router http.Handler, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFullAuthAndTaskFlow(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	// Register
	rec := request(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "flow@example.com",
		"password": "Fl0w-Password!",
		"name":     "Flow Tester",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register: %s", rec.Body.String())

	// Login
	rec = request(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "flow@example.com",
		"password": "Fl0w-Password!",
	})
	require.Equal(t, http.StatusOK, rec.Code, "login: %s", rec.Body.String())

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)

	// Tasks require the access token
	rec = request(t, router, http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Create a task
	rec = request(t, router, http.MethodPost, "/api/tasks", pair.AccessToken, map[string]string{
		"title": "End to end task",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "create task: %s", rec.Body.String())

	var task struct {
		ID     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "PENDING", task.Status)

	// List it back
	rec = request(t, router, http.MethodGet, "/api/tasks", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Data  []json.RawMessage `json:"data"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	// Refresh rotates the pair
	rec = request(t, router, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, "refresh: %s", rec.Body.String())

	var rotated struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rotated))
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The new access token works
	rec = request(t, router, http.MethodGet, "/api/tasks", rotated.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	rec := request(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRefreshWithoutTokenIsRejected(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	rec := request(t, router, http.MethodPost, "/api/auth/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
