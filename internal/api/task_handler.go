package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/store"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// TaskHandler handles the /api/tasks CRUD endpoints.
type TaskHandler struct {
	tasks     service.TaskService
	validator *validator.Validate
}

// NewTaskHandler creates a TaskHandler backed by the given task service.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{
		tasks:     tasks,
		validator: newValidator(),
	}
}

// Create handles POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), req.Title, req.Description)
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newTaskResponse(task))
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(task))
}

// List handles GET /api/tasks with optional page, limit and status query
// parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	params, ok := h.listParams(w, r)
	if !ok {
		return
	}

	tasks, total, err := h.tasks.ListTasks(r.Context(), params)
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK,
		newTaskListResponse(tasks, total, params.Page, params.Limit))
}

// Update handles PATCH /api/tasks/{id}. Absent body fields keep their
// stored values.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	params := store.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		params.Status = &status
	}

	task, err := h.tasks.UpdateTask(r.Context(), id, params)
	if err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(task))
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathTaskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), id); err != nil {
		h.respondTaskError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// pathTaskID parses the {id} path parameter. A malformed UUID is a client
// error, not a missing task.
func (h *TaskHandler) pathTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *TaskHandler) listParams(w http.ResponseWriter, r *http.Request) (store.ListTasksParams, bool) {
	params := store.ListTasksParams{Page: defaultPage, Limit: defaultLimit}
	query := r.URL.Query()

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid page parameter")
			return params, false
		}
		params.Page = page
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return params, false
		}
		params.Limit = limit
	}

	if raw := query.Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !status.IsValid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status parameter")
			return params, false
		}
		params.Status = &status
	}

	return params, true
}

func (h *TaskHandler) respondTaskError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusInternalServerError {
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
		return
	}
	if errors.Is(err, store.ErrInvalidEntity) {
		shared.RespondWithError(w, r, status, "Invalid task data")
		return
	}
	shared.RespondWithError(w, r, status, GetSafeErrorMessage(err))
}
