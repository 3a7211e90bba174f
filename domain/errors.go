package domain

import "errors"

var (
	// ErrNotFound is returned when something is not found
	ErrNotFound = errors.New("item not found")
	ErrConflict = errors.New("item already exists")

	// ErrInvalidArgument is returned before anything is attempted when a
	// required call argument is missing or empty.
	ErrInvalidArgument = errors.New("required argument is missing or empty")

	// ErrMalformedID is returned when an identifier does not conform to
	// the primary-key format, as opposed to a well-formed id that simply
	// matches nothing.
	ErrMalformedID = errors.New("malformed identifier")

	// ErrNoOpUpdate is returned when an update patch would not change any
	// stored field value.
	ErrNoOpUpdate = errors.New("update changes no stored value")
)

// UpdateResult reports how many documents an update matched and
// actually modified.
type UpdateResult struct {
	Matched  int64
	Modified int64
}
