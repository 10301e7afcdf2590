package errors

import "errors"

var (
	ErrInvalidUserCode        = errors.New("user code has invalid format")
	ErrProfileNotFound        = errors.New("profile not found")
	ErrProgressNotInitialized = errors.New("language progress is not initialized")
	ErrCodeAllocation         = errors.New("could not allocate user code")
	ErrDuplicateCode          = errors.New("user code already exists")
	ErrConcurrentUpdate       = errors.New("profile was modified concurrently")
	ErrInvalidArgument        = errors.New("invalid argument")
)

// ErrNoChange is returned by an update mutator to skip the write.
var ErrNoChange = errors.New("no change")
