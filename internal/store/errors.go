// Package store defines the sentinel errors every entity store
// implementation (Postgres, in-memory fake) reports through, so the service
// layer can translate them without importing a concrete backend.
package store

import "errors"

var (
	// ErrNotFound means the keyed record does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrVersionConflict means a version-checked update lost a race.
	ErrVersionConflict = errors.New("version conflict")

	// ErrDuplicateKey means a unique constraint was violated.
	ErrDuplicateKey = errors.New("duplicate key violation")
)
