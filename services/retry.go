package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	storageRetryAttempts = 3
	storageRetryDelay    = 50 * time.Millisecond
)

// retryable reports whether a storage error is worth retrying. Rule
// violations and missing records are surfaced verbatim, never retried.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrConflict) {
		return false
	}
	return true
}

// withStorageRetry runs fn up to storageRetryAttempts times. Each attempt
// is expected to be transactional, so a failed attempt leaves no partial
// write behind.
func withStorageRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < storageRetryAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(storageRetryDelay * time.Duration(attempt))
		}
		err = fn()
		if err == nil || !retryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrTransientStorage, err)
}
