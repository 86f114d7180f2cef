package db

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the repositories. Callers branch with
// errors.Is; persistence failures wrap ErrPersistence around the driver
// error so the original cause stays inspectable.
var (
	// ErrNotFound is returned when the requested row does not exist,
	// including rows that vanished between a read and a write.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an update loses the optimistic
	// concurrency check against a concurrent writer.
	ErrConflict = errors.New("record changed concurrently")

	// ErrDuplicate is returned when an insert would violate a uniqueness
	// rule, e.g. registering an email twice.
	ErrDuplicate = errors.New("record already exists")

	// ErrPersistence wraps storage-level failures. Never retried here;
	// the caller's next invocation is the retry.
	ErrPersistence = errors.New("storage failure")

	// ErrInvalidCredentials is returned by Authenticate on a bad
	// login/password pair.
	ErrInvalidCredentials = errors.New("invalid login or password")
)

// ValidationError reports bad user input for a single field. The
// operation it aborts performs no partial write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is a field validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func persistence(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
