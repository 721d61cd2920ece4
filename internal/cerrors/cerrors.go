// Package cerrors provides the shared error taxonomy used across the
// filecache packages (configuration, input, I/O, parse and producer
// errors). It exists so every package can wrap and classify errors the
// same way without importing each other.
package cerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the configuration and input error classes.
var (
	ErrUnknownCache     = errors.New("filecache: unknown cache")
	ErrUnknownConfigKey = errors.New("filecache: unknown config key")
	ErrBadNamespacePart = errors.New("filecache: bad namespace part")
	ErrBadCacheName     = errors.New("filecache: bad cache name")
	ErrBadID            = errors.New("filecache: bad id")
	ErrBadProducer      = errors.New("filecache: bad producer")
)

// NonRetryableError marks an error that must not be retried: the
// caller already unwound any partial state (temp file unlinked) and
// re-raising is the only correct response.
type NonRetryableError struct {
	message string
	cause   error
}

func (e *NonRetryableError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *NonRetryableError) Unwrap() error { return e.cause }

func (e *NonRetryableError) Is(target error) bool {
	_, ok := target.(*NonRetryableError)
	return ok
}

// WrapNonRetryable marks cause as non-retryable, or returns nil if
// cause is nil.
func WrapNonRetryable(message string, cause error) error {
	if cause == nil {
		return nil
	}
	return &NonRetryableError{message: message, cause: cause}
}

// IsNonRetryable reports whether err (or something it wraps) is a
// NonRetryableError.
func IsNonRetryable(err error) bool {
	if err == nil {
		return false
	}
	var nonRetryable *NonRetryableError
	return errors.As(err, &nonRetryable)
}

// RenameError wraps a failed commit-time rename (temp -> permanent).
type RenameError struct {
	Path  string
	cause error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("filecache: rename to %s failed: %v", e.Path, e.cause)
}

func (e *RenameError) Unwrap() error { return e.cause }

// NewRenameError wraps a rename failure, marking it non-retryable per
// the error taxonomy (temp file is unlinked by the caller before this
// is returned).
func NewRenameError(path string, cause error) error {
	if cause == nil {
		return nil
	}
	return WrapNonRetryable("rename_failed", &RenameError{Path: path, cause: cause})
}

// IOError wraps a transient read/write/unlink failure.
type IOError struct {
	Op    string
	Path  string
	cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("filecache: io_error during %s on %s: %v", e.Op, e.Path, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// NewIOError wraps a transient filesystem error.
func NewIOError(op, path string, cause error) error {
	if cause == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, cause: cause}
}

// IsTransientIO reports whether err is an *IOError (and therefore a
// candidate for retry), as opposed to a non-retryable rename or
// producer failure.
func IsTransientIO(err error) bool {
	if err == nil {
		return false
	}
	var ioErr *IOError
	return errors.As(err, &ioErr) && !IsNonRetryable(err)
}
