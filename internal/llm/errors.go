package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a backend failure.
type ErrorKind string

const (
	ErrorKindAuth      ErrorKind = "auth"
	ErrorKindModel     ErrorKind = "model"
	ErrorKindRateLimit ErrorKind = "rate_limit"
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindServer    ErrorKind = "server"
	ErrorKindConn      ErrorKind = "connection"
	ErrorKindCanceled  ErrorKind = "canceled"
	ErrorKindUnknown   ErrorKind = "unknown"
)

// BackendError wraps a provider failure with its classification.
type BackendError struct {
	Backend   string
	Kind      ErrorKind
	Retryable bool
	Cause     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %s: %v", e.Backend, e.Kind, e.Cause)
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// NewBackendError classifies err and tags it with the backend name.
// An err that is already a *BackendError is returned unchanged.
func NewBackendError(backend string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	kind, retryable := Classify(err)
	return &BackendError{
		Backend:   backend,
		Kind:      kind,
		Retryable: retryable,
		Cause:     err,
	}
}

// Classify inspects an error returned by a provider SDK.
func Classify(err error) (ErrorKind, bool) {
	if errors.Is(err, context.Canceled) {
		return ErrorKindCanceled, false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout, true
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "401") || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") || strings.Contains(msg, "403"):
		return ErrorKindAuth, false
	case strings.Contains(lower, "model") &&
		(strings.Contains(lower, "not found") || strings.Contains(lower, "does not exist")):
		return ErrorKindModel, false
	case strings.Contains(msg, "429") || strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "overloaded"):
		return ErrorKindRateLimit, true
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return ErrorKindTimeout, true
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "connection reset"):
		return ErrorKindConn, true
	case strings.Contains(msg, "500") || strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") || strings.Contains(msg, "504"):
		return ErrorKindServer, true
	}
	return ErrorKindUnknown, false
}

// IsRetryable reports whether err is a retryable backend failure.
func IsRetryable(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Retryable
	}
	return false
}
