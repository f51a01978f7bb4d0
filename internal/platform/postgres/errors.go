package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL unique violation error code
const uniqueViolationCode = "23505"

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation, e.g. a duplicate email on the users table.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
