package services

import "errors"

// Domain error sentinels. Controllers translate these to error codes with
// errors.Is, so services stay free of transport concerns.
var (
	// ErrNotFound marks an unknown convert/alert/call/script/user id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition marks a stage or alert-status rule violation.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInvalidState marks a call-state rule violation.
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict marks an optimistic guard mismatch or a duplicate
	// open-alert condition.
	ErrConflict = errors.New("conflict")

	// ErrTransientStorage marks a storage failure that persisted through
	// the bounded retries.
	ErrTransientStorage = errors.New("transient storage failure")
)
