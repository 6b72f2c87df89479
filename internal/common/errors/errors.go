// Package errors provides the standardized failure taxonomy for the
// auto-submit engine and its task-queue integration.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnsupportedSite ErrorCode = "UNSUPPORTED_SITE"
	ErrCodeNavigationError ErrorCode = "NAVIGATION_ERROR"
	ErrCodeLoginFailed     ErrorCode = "LOGIN_FAILED"
	ErrCodeFormFillFailed  ErrorCode = "FORM_FILL_FAILED"
	ErrCodeCaptchaBlocked  ErrorCode = "CAPTCHA_BLOCKED"
	ErrCodeSubmitFailed    ErrorCode = "SUBMIT_FAILED"
	ErrCodeVerifyFailed    ErrorCode = "VERIFY_FAILED"
	ErrCodeQuotaExceeded   ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeExecutionError  ErrorCode = "EXECUTION_ERROR"

	ErrCodeArtifactUploadFailed ErrorCode = "ARTIFACT_UPLOAD_FAILED"
	ErrCodeInvalidTask          ErrorCode = "INVALID_TASK"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewUnsupportedSiteError marks a job URL whose host matches no adapter.
// Not retryable: the user has to apply manually.
func NewUnsupportedSiteError(jobURL string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedSite,
		Message:   "No adapter supports this hiring site; manual application required",
		Details:   fmt.Sprintf("jobUrl: %s", jobURL),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNavigationError wraps a page-load failure. Retryable at the task-queue
// level with a fresh browser.
func NewNavigationError(jobURL string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNavigationError,
		Message:   "Job page failed to load",
		Details:   fmt.Sprintf("jobUrl: %s, error: %v", jobURL, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLoginFailedError marks an ATS login failure.
func NewLoginFailedError(adapter string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLoginFailed,
		Message:   "Login to the hiring site failed",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"adapter": adapter},
		Timestamp: time.Now().UTC(),
	}
}

// NewFormFillError marks a required field that neither resolution tier could
// locate, or a fill action that failed on a resolved element.
func NewFormFillError(adapter, field string, err error) *StandardError {
	details := fmt.Sprintf("field: %s", field)
	if err != nil {
		details = fmt.Sprintf("field: %s, error: %v", field, err)
	}
	return &StandardError{
		Code:      ErrCodeFormFillFailed,
		Message:   "Required application field could not be filled",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"adapter": adapter, "field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewCaptchaBlockedError marks a CAPTCHA challenge no solver cleared.
func NewCaptchaBlockedError(adapter, vendor string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCaptchaBlocked,
		Message:   "Submission blocked by an unsolved CAPTCHA challenge",
		Details:   fmt.Sprintf("vendor: %s", vendor),
		Retryable: false,
		Metadata:  map[string]interface{}{"adapter": adapter, "vendor": vendor},
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmitFailedError marks a submit-control resolution or click failure.
func NewSubmitFailedError(adapter string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmitFailed,
		Message:   "Application submit action failed",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"adapter": adapter},
		Timestamp: time.Now().UTC(),
	}
}

// NewVerifyFailedError marks a run where no success confirmation appeared.
// A missing confirmation is never reported as success.
func NewVerifyFailedError(adapter, indicator string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVerifyFailed,
		Message:   "Submission could not be confirmed",
		Details:   indicator,
		Retryable: false,
		Metadata:  map[string]interface{}{"adapter": adapter},
		Timestamp: time.Now().UTC(),
	}
}

// NewQuotaExceededError is raised by the invoker before the engine runs.
func NewQuotaExceededError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuotaExceeded,
		Message:   "Monthly auto-apply quota exhausted",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExecutionError wraps an unexpected failure caught at the run boundary.
func NewExecutionError(detail interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeExecutionError,
		Message:   "Unexpected error during submission run",
		Details:   fmt.Sprintf("%v", detail),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTaskError marks a task descriptor that failed schema validation.
func NewInvalidTaskError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTask,
		Message:   "Task descriptor failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
