package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies agent-bridge failures. Every failure that can
// reach the reasoning loop boundary carries one of these codes so the
// orchestrator can phrase the right user-facing message.
type ErrorCode string

const (
	CodeValidation      ErrorCode = "VALIDATION"       // missing/invalid tool arguments — ask the user, never retry
	CodeRemoteOperation ErrorCode = "REMOTE_OPERATION" // Catalog API answered non-2xx
	CodeTransport       ErrorCode = "TRANSPORT"        // network/timeout reaching a remote collaborator
	CodeToolNotFound    ErrorCode = "TOOL_NOT_FOUND"   // model asked for an unregistered tool
	CodeSpeech          ErrorCode = "SPEECH"           // speech provider failure
	CodeInternal        ErrorCode = "INTERNAL"
)

// AppError is the bridge-wide error type.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError reports missing or invalid tool arguments.
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

// NewRemoteOperationError reports a non-2xx answer from the Catalog API.
func NewRemoteOperationError(message string, cause error) *AppError {
	return &AppError{Code: CodeRemoteOperation, Message: message, Err: cause}
}

// NewTransportError reports a network-level failure (timeout, refused
// connection) — distinct from an HTTP-status failure so callers can
// phrase "the service is unreachable" instead of "not found".
func NewTransportError(message string, cause error) *AppError {
	return &AppError{Code: CodeTransport, Message: message, Err: cause}
}

// NewToolNotFoundError reports a tool name absent from the registry.
func NewToolNotFoundError(name string) *AppError {
	return &AppError{Code: CodeToolNotFound, Message: fmt.Sprintf("tool %q is not registered", name)}
}

// NewSpeechError reports a speech provider failure.
func NewSpeechError(message string, cause error) *AppError {
	return &AppError{Code: CodeSpeech, Message: message, Err: cause}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: cause}
}

func codeOf(err error) (ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeValidation
}

// IsRemoteOperation reports whether err is a remote-operation error.
func IsRemoteOperation(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeRemoteOperation
}

// IsTransport reports whether err is a transport error.
func IsTransport(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeTransport
}

// IsToolNotFound reports whether err is a tool-not-found error.
func IsToolNotFound(err error) bool {
	c, ok := codeOf(err)
	return ok && c == CodeToolNotFound
}
