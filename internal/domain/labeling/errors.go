package labeling

import "errors"

var (
	// ErrConflict marks a lost optimistic-concurrency race. Transient:
	// callers retry the whole transaction with backoff.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrRetryExhausted wraps the last conflict once the retry budget is
	// spent. It is a hard failure, distinct from "no work available".
	ErrRetryExhausted = errors.New("transaction retry budget exhausted")

	// ErrPermissionDenied is returned when a non-admin edits a QA-confirmed
	// image. Never retried.
	ErrPermissionDenied = errors.New("image is confirmed by QA and frozen for labelers")

	ErrImageNotFound = errors.New("image not found")
	ErrLabelNotFound = errors.New("label not found")
	ErrUserNotFound  = errors.New("user not found")

	ErrUserDisabled = errors.New("user account is disabled")
)
