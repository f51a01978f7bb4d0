package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface using a
// PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db store.DBTX
}

// Ensure PostgresTaskStore implements store.TaskStore
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	return &PostgresTaskStore{db: db}
}

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (id, title, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		nullableString(task.Description),
		task.Status,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert task",
			"task_id", task.ID,
			"error", err)
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, title, description, status, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContext(ctx).Error("failed to get task",
			"task_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return task, nil
}

// List implements store.TaskStore.List. Results are ordered by creation
// time descending; the total count covers all pages of the filter.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	params store.ListTasksParams,
) ([]domain.Task, int, error) {
	log := logger.FromContext(ctx)

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	countQuery := `SELECT COUNT(*) FROM tasks`
	listQuery := `
		SELECT id, title, description, status, created_at, updated_at
		FROM tasks
	`
	var countArgs, listArgs []any
	if params.Status != nil {
		countQuery += ` WHERE status = $1`
		listQuery += ` WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
		countArgs = []any{*params.Status}
		listArgs = []any{*params.Status, limit, offset}
	} else {
		listQuery += ` ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
		listArgs = []any{limit, offset}
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		log.Error("failed to count tasks", "error", err)
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		log.Error("failed to query tasks", "error", err)
		return nil, 0, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]domain.Task, 0, limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", "error", err)
			return nil, 0, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", "error", err)
		return nil, 0, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, total, nil
}

// Update implements store.TaskStore.Update. It is a read-then-write merge
// with no version check: concurrent updates to the same task resolve as
// last-writer-wins.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	id uuid.UUID,
	params store.UpdateTaskParams,
) (*domain.Task, error) {
	log := logger.FromContext(ctx)

	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
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

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		nullableString(task.Description),
		task.Status,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			"task_id", id,
			"error", err)
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Deleted between the read and the write.
		return nil, store.ErrTaskNotFound
	}

	return task, nil
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			"task_id", id,
			"error", err)
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&task.Status,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	return &task, nil
}

// nullableString maps an empty string to SQL NULL.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
