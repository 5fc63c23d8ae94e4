package store

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is false
	// and no database file exists yet.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrRecordNotFound is returned when a history record does not exist.
	ErrRecordNotFound = errors.New("history record not found")
)
