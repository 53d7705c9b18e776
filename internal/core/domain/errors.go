package domain

import "errors"

var (
	// ErrTaskNotFound covers both a missing task and one the actor may not see.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTargetNotFound is returned when an admin assigns a task to an unknown user.
	ErrTargetNotFound = errors.New("target user not found")
	ErrInvalidStatus  = errors.New("invalid task status")
	// ErrIdempotencyInProgress is returned while another request holding the
	// same Idempotency-Key is still creating its task.
	ErrIdempotencyInProgress = errors.New("request with this idempotency key is in progress")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("user with this email already exists")
	// ErrInvalidCredentials is deliberately the same for an unknown email and a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("access forbidden")
	ErrSelfDeletion       = errors.New("cannot delete own account")
	// ErrAccountGone is returned when a still valid token belongs to an
	// account that has since been removed.
	ErrAccountGone = errors.New("account no longer exists")
)
