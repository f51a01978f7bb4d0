package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common task validation errors
var (
	ErrEmptyTaskID  = errors.New("task ID cannot be empty")
	ErrEmptyTitle   = errors.New("task title cannot be empty")
	ErrTitleTooLong = errors.New("task title cannot exceed 100 characters")
)

// MaxTitleLength is the maximum number of characters allowed in a task title.
const MaxTitleLength = 100

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Valid task statuses. Stored as text; the wire values match the column
// CHECK constraint in the tasks migration.
const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// IsValid reports whether s is one of the defined task statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task represents a single task record.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTask creates a Task with the given title and optional description.
// New tasks start in the PENDING status. Returns an error if validation
// fails.
func NewTask(title, description string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      TaskStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks that the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTitle
	}
	if len(t.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}

	if !t.Status.IsValid() {
		return fmt.Errorf("invalid task status: %q", t.Status)
	}

	return nil
}
