package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")

	// ErrDuplicate is returned when an insert collides with a unique key.
	ErrDuplicate = errors.New("persistence: duplicate record")

	// ErrConstraintViolation is returned when a record fails a storage
	// constraint other than uniqueness.
	ErrConstraintViolation = errors.New("persistence: constraint violation")

	// ErrForeignKeyViolation is returned when a record references a row
	// that does not exist.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")

	// ErrUnavailable is returned when the storage backend cannot be
	// reached or a query fails for infrastructure reasons.
	ErrUnavailable = errors.New("persistence: storage unavailable")
)
