package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a failure with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "RESP-4001")
	Message string // Human-readable message, safe to send to clients
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// ClientMessage is the text placed after "ERR " in an error reply.
func (e *DomainError) ClientMessage() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsProtocolError reports whether err was raised while decoding a request
// or building a command from it.
func IsProtocolError(err error) bool {
	return strings.HasPrefix(GetErrorCode(err), protocolPrefix)
}

// IsCommandError reports whether err was raised while executing a command.
func IsCommandError(err error) bool {
	return strings.HasPrefix(GetErrorCode(err), commandPrefix)
}

const (
	protocolPrefix = "RESP-"
	commandPrefix  = "CMD-"
)

// ============================================================================
// Protocol Errors (RESP)
// ============================================================================

var (
	// ErrEmptyInput indicates a read delivered no bytes to decode.
	ErrEmptyInput = NewDomainError("RESP-4000", "empty input")

	// ErrBadLength indicates a missing or non-integer length prefix.
	ErrBadLength = NewDomainError("RESP-4001", "invalid length prefix")

	// ErrTruncated indicates a declared length runs past the end of the buffer.
	ErrTruncated = NewDomainError("RESP-4002", "truncated request")

	// ErrNullCommandName indicates the first element of a request is null or missing.
	ErrNullCommandName = NewDomainError("RESP-4003", "null command name")

	// ErrNullArgument indicates a null bulk string in argument position.
	ErrNullArgument = NewDomainError("RESP-4004", "null argument")

	// ErrLimitExceeded indicates a request exceeded a protocol limit.
	ErrLimitExceeded = NewDomainError("RESP-4130", "protocol limit exceeded")
)

// ============================================================================
// Command Errors (CMD)
// ============================================================================

var (
	// ErrWrongArity indicates a command received the wrong number of arguments.
	ErrWrongArity = NewDomainError("CMD-4001", "wrong number of arguments")

	// ErrInvalidArgument indicates an argument could not be parsed.
	ErrInvalidArgument = NewDomainError("CMD-4002", "value is not an integer or out of range")

	// ErrUnknownCommand indicates the command name is not recognized.
	ErrUnknownCommand = NewDomainError("CMD-4040", "unknown command")

	// ErrRateLimited indicates the client exceeded its request rate.
	ErrRateLimited = NewDomainError("CMD-4290", "rate limit exceeded")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternal indicates an internal server error.
	ErrInternal = NewDomainError("SYS-5000", "internal server error")

	// ErrStorage indicates a persistence layer error.
	ErrStorage = NewDomainError("SYS-5001", "storage error")
)
