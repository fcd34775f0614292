// internal/models/errors.go
package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an operation failure. Every mutating operation either
// commits in full or fails with exactly one kind; there is no partial commit.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "INVALID_INPUT"
	KindUnauthorized       ErrorKind = "UNAUTHORIZED"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindPaymentFailed      ErrorKind = "PAYMENT_FAILED"
	KindDisputeActive      ErrorKind = "DISPUTE_ACTIVE"
	KindBatchLimitExceeded ErrorKind = "BATCH_LIMIT_EXCEEDED"
	KindTimeLockActive     ErrorKind = "TIMELOCK_ACTIVE"
	KindRateLimited        ErrorKind = "RATE_LIMITED"
	KindPaused             ErrorKind = "PAUSED"
	KindReentrancy         ErrorKind = "REENTRANCY"
	KindInternal           ErrorKind = "INTERNAL"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func E(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Ef(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the error kind, defaulting to KindInternal for errors that
// did not originate in the registry core.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
