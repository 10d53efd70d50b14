package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the storefront failure taxonomy.
var (
	ErrTransport       = errors.New("transport failure")
	ErrValidation      = errors.New("validation failure")
	ErrSessionRequired = errors.New("session required")
	ErrSuperseded      = errors.New("resolution superseded")
)

// AppError represents a structured storefront error. Status carries the remote
// HTTP status when the failure came from the remote collaborator, 0 otherwise.
type AppError struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Status   int               `json:"-"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"-"`
	Err      error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Transport creates an error for a failed remote call. The message is kept
// verbatim because stores surface it as their error text.
func Transport(status int, message string) *AppError {
	return &AppError{
		Code:    "TRANSPORT_FAILURE",
		Message: message,
		Status:  status,
		Err:     ErrTransport,
	}
}

// TransportCause wraps a network-level error that never produced a response.
func TransportCause(err error) *AppError {
	return &AppError{
		Code:    "TRANSPORT_FAILURE",
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %w", ErrTransport, err),
	}
}

// Validation creates an error for missing or malformed local input.
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:    "VALIDATION_FAILURE",
		Message: message,
		Fields:  fields,
		Err:     ErrValidation,
	}
}

// SessionRequired creates an error for an action attempted without a session.
// Redirect names the view the caller should navigate to.
func SessionRequired(redirect string) *AppError {
	return &AppError{
		Code:     "SESSION_REQUIRED",
		Message:  "an authenticated session is required",
		Redirect: redirect,
		Err:      ErrSessionRequired,
	}
}

// Superseded creates an error for a resolution discarded in favour of newer state.
func Superseded(operation string) *AppError {
	return &AppError{
		Code:    "SUPERSEDED",
		Message: fmt.Sprintf("%s resolved after newer state was applied", operation),
		Err:     ErrSuperseded,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// Message returns the text a store records for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return err.Error()
}

// IsSuccessStatus reports whether the remote status counts as success.
// Only 200 and 201 do; every other status is a failure even without a transport error.
func IsSuccessStatus(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated
}

// RemoteStatus returns the remote HTTP status recorded on err, or 0.
func RemoteStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}
