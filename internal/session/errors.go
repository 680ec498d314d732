package session

import "errors"

var (
	// ErrNotFound is returned when an operation names a session that does
	// not exist, or names a stale session id for a pair that was reset.
	ErrNotFound = errors.New("session not found")

	// ErrAlreadyExists is returned by Create when the (app, user) pair
	// already has a live session. A pair holds at most one session.
	ErrAlreadyExists = errors.New("session already exists")

	// ErrVersionConflict is returned by Replace when the session changed
	// since the caller loaded it. Callers re-run the turn against the
	// fresh state.
	ErrVersionConflict = errors.New("session version conflict")

	// ErrDuplicateApplication is returned when an application for a job
	// id is appended twice.
	ErrDuplicateApplication = errors.New("application already recorded for job")

	// ErrInvalidConfig is returned by the factory when required options
	// for the chosen backend are missing.
	ErrInvalidConfig = errors.New("invalid session store configuration")

	// ErrInvalidStoreType is returned by the factory for an unknown
	// backend name.
	ErrInvalidStoreType = errors.New("invalid session store type")
)
