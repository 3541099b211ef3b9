package storage

import "errors"

var (
	// ErrReadOnlyView is returned by index write operations over a view
	// that cannot be written (a snapshot, or any plain View).
	ErrReadOnlyView = errors.New("storage: read-only view")

	// ErrForkMerged is returned when a fork is written to or merged again
	// after it has already been merged.
	ErrForkMerged = errors.New("storage: fork already merged")
)

func IsReadOnly(err error) bool { return errors.Is(err, ErrReadOnlyView) }
