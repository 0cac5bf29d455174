package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrCapacityExceeded      = errors.New("capacity exceeded")
	ErrLastLineup            = errors.New("cannot delete the last lineup")
	ErrFetchFailure          = errors.New("ability fetch failed")
	ErrFetchInFlight         = errors.New("ability fetch already in flight")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
