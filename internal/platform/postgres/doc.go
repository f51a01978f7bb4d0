// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store, using database/sql over the pgx
// stdlib driver. PostgreSQL error codes are translated into the store's
// sentinel errors so callers never depend on driver internals.
package postgres
