package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrDataUnavailable marks an expected not-yet state, such as a lineup
	// the provider has not announced. Callers poll again later.
	ErrDataUnavailable = errors.New("data not yet available")
)
