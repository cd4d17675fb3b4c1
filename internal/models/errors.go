package models

import "errors"

var (
	// ErrUnauthorized marks a missing or invalid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument marks a missing or malformed request parameter.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorage marks a backing store failure.
	ErrStorage = errors.New("storage failure")
)

// StorageError wraps a database error with the operation that produced it.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
