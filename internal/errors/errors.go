package errors

import (
	"errors"
	"fmt"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ErrNotRegistered indicates that the caller has no bot_users record yet.
var ErrNotRegistered = errors.New("user is not registered")

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewStoreError wraps a failed call to the backend data store.
func NewStoreError(op string, cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        "E200",
		Message:     fmt.Sprintf("store %s failed: %s", op, underlyingMsg),
		UserMessage: "⚠️ The service is temporarily unavailable. Please try again later.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

// NewMembershipCheckError wraps a failed channel membership lookup.
// Callers treat it as "not a member" (fail-closed), so it is never surfaced
// to the user as an error.
func NewMembershipCheckError(cause error) *AppError {
	return &AppError{
		Code:        "E300",
		Message:     "channel membership check failed",
		UserMessage: "",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       cause,
	}
}

// NewUniquenessExhausted reports that no unused credential id was found
// within the attempt bound. Retryable: a later attempt draws new candidates.
func NewUniquenessExhausted(attempts int) *AppError {
	return &AppError{
		Code:        "E400",
		Message:     fmt.Sprintf("no unique credential id found in %d attempts", attempts),
		UserMessage: "❌ Could not generate a unique ID. Please try again later.",
		Severity:    SeverityMedium,
		Retryable:   true,
		cause:       nil,
	}
}

// NewNotificationError wraps a failed best-effort notification send.
func NewNotificationError(cause error) *AppError {
	return &AppError{
		Code:        "E500",
		Message:     "referral notification failed",
		UserMessage: "",
		Severity:    SeverityLow,
		Retryable:   true,
		cause:       cause,
	}
}

func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        "E600",
		Message:     fmt.Sprintf("Rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("Too many requests. Try again in %d seconds.", retryAfter),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}
