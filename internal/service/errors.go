// Package service holds the business rules behind the HTTP API.
package service

import (
	"errors"
	"fmt"

	"gymrace/internal/models"
	"gymrace/internal/observability"
)

// WriteError reports a best-effort write that did not reach the store.
// Callers decide whether to surface it; the HTTP layer logs it and answers
// as if the write succeeded, flagged as not persisted.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// AsWriteError unwraps err into a *WriteError.
func AsWriteError(err error) (*WriteError, bool) {
	var we *WriteError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// writeFailed wraps a storage failure of op. Domain errors pass through
// untouched so validation and permission failures keep their codes.
func writeFailed(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
		return err
	}
	observability.BackendWriteFailures.WithLabelValues(op).Inc()
	return &WriteError{Op: op, Err: err}
}
