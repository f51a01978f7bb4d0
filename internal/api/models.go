package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// RegisterRequest is the payload for user registration.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,taskpassword"`
	Name     string `json:"name"     validate:"required,min=2"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest carries a refresh token in the body for clients that
// do not use the cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the public view of a user. The password hash never leaves
// the server.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPairResponse is the successful response for login and refresh.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateTaskRequest is the payload for task creation.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty"`
}

// UpdateTaskRequest is the payload for partial task updates. Absent fields
// keep their current values.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty"`
	Status      *string `json:"status"      validate:"omitempty,oneof=PENDING IN_PROGRESS DONE"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskListResponse is the paginated list envelope.
type TaskListResponse struct {
	Data  []TaskResponse `json:"data"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func newUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}

func newTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func newTaskListResponse(tasks []domain.Task, total, page, limit int) TaskListResponse {
	data := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		data = append(data, newTaskResponse(&tasks[i]))
	}
	return TaskListResponse{Data: data, Total: total, Page: page, Limit: limit}
}
