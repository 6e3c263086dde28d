package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// RetryableStoreError marks a store failure that may succeed on a later
// attempt: connection failures, timeouts, transient unavailability.
type RetryableStoreError struct {
	Op  string
	Err error
}

func (e RetryableStoreError) Error() string {
	return fmt.Sprintf("%s: retryable store error: %v", e.Op, e.Err)
}

func (e RetryableStoreError) Unwrap() error { return e.Err }

// Is enables errors.Is matching on RetryableStoreError.
func (e RetryableStoreError) Is(target error) bool {
	_, ok := target.(RetryableStoreError)
	if ok {
		return true
	}
	_, ok = target.(*RetryableStoreError)
	return ok
}

// ErrRetryable is the sentinel error for retryable store failures.
var ErrRetryable = RetryableStoreError{}

// TerminalStoreError marks a store failure that retrying cannot fix:
// constraint violations, malformed input, permission denials.
type TerminalStoreError struct {
	Op  string
	Err error
}

func (e TerminalStoreError) Error() string {
	return fmt.Sprintf("%s: terminal store error: %v", e.Op, e.Err)
}

func (e TerminalStoreError) Unwrap() error { return e.Err }

// Is enables errors.Is matching on TerminalStoreError.
func (e TerminalStoreError) Is(target error) bool {
	_, ok := target.(TerminalStoreError)
	if ok {
		return true
	}
	_, ok = target.(*TerminalStoreError)
	return ok
}

// ErrTerminal is the sentinel error for terminal store failures.
var ErrTerminal = TerminalStoreError{}

// ErrUnconfirmed signals that a registration's mapping was written but never
// became resolvable within the reconciliation window. The underlying writes
// likely succeeded; callers should warn the operator, not abort.
var ErrUnconfirmed = fmt.Errorf("registration unconfirmed")
