package repositories

import "errors"

// Sentinel errors returned by the Mongo repositories. Driver failures are
// wrapped with context; these two are returned bare so handlers can map them
// straight to 404 and 409 responses.
var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates the write would violate a unique index, such as
	// the users email index.
	ErrConflict = errors.New("record conflict")
)
