package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgresUserStore implements the store.UserStore interface using a
// PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db store.DBTX
}

// Ensure PostgresUserStore implements store.UserStore
var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a new PostgreSQL implementation of the
// UserStore interface. The caller owns the database connection lifecycle.
func NewPostgresUserStore(db store.DBTX) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO users (id, email, hashed_password, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
		user.Name,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrEmailExists
		}
		log.Error("failed to insert user",
			"user_id", user.ID,
			"error", err)
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, hashed_password, name, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(ctx, s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, hashed_password, name, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	return s.scanUser(ctx, s.db.QueryRowContext(ctx, query, email))
}

// scanUser scans a single user row, mapping sql.ErrNoRows to
// store.ErrUserNotFound.
func (s *PostgresUserStore) scanUser(ctx context.Context, row *sql.Row) (*domain.User, error) {
	log := logger.FromContext(ctx)

	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.Name,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to scan user row", "error", err)
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}

	return &user, nil
}
