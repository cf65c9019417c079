package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("TEST-1000", "test message"),
			expected: "[TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("TEST-1001", "test message").WithDetails("extra info"),
			expected: "[TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_ClientMessage(t *testing.T) {
	if got := ErrBadLength.ClientMessage(); got != "invalid length prefix" {
		t.Errorf("ClientMessage() = %q", got)
	}
	got := ErrBadLength.WithDetails("expected '$'").ClientMessage()
	if got != "invalid length prefix: expected '$'" {
		t.Errorf("ClientMessage() = %q", got)
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("TEST-1000", "message 1")
	err2 := NewDomainError("TEST-1000", "message 2")
	err3 := NewDomainError("TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("TEST-1000", "wrapper").WithCause(cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := NewDomainError("TEST-1000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("TEST-1000", "original message")
	withDetails := original.WithDetails("additional details")

	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}
	if withDetails.Code != original.Code {
		t.Errorf("Code = %q, want %q", withDetails.Code, original.Code)
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrTruncated, "RESP-4002") {
		t.Error("IsDomainError should return true for matching code")
	}
	if IsDomainError(ErrTruncated, "RESP-9999") {
		t.Error("IsDomainError should return false for non-matching code")
	}
	if IsDomainError(fmt.Errorf("regular error"), "") {
		t.Error("IsDomainError should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("wrapped: %w", ErrTruncated)
	if !IsDomainError(wrapped, "RESP-4002") {
		t.Error("IsDomainError should work with wrapped errors")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"domain error", ErrUnknownCommand, "CMD-4040"},
		{"wrapped domain error", fmt.Errorf("wrapped: %w", ErrEmptyInput), "RESP-4000"},
		{"regular error", fmt.Errorf("regular error"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	protocol := []*DomainError{
		ErrEmptyInput, ErrBadLength, ErrTruncated,
		ErrNullCommandName, ErrNullArgument, ErrLimitExceeded,
	}
	for _, err := range protocol {
		if !IsProtocolError(err) {
			t.Errorf("%s should be a protocol error", err.Code)
		}
		if IsCommandError(err) {
			t.Errorf("%s should not be a command error", err.Code)
		}
	}

	command := []*DomainError{ErrWrongArity, ErrInvalidArgument, ErrUnknownCommand, ErrRateLimited}
	for _, err := range command {
		if !IsCommandError(err) {
			t.Errorf("%s should be a command error", err.Code)
		}
		if IsProtocolError(err) {
			t.Errorf("%s should not be a protocol error", err.Code)
		}
	}

	if IsProtocolError(ErrStorage) || IsCommandError(ErrInternal) {
		t.Error("system errors should be neither protocol nor command errors")
	}
}

func TestErrorChaining(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := ErrStorage.
		WithDetails("snapshot save").
		WithCause(cause)

	if err.Code != "SYS-5001" {
		t.Errorf("Code = %q, want %q", err.Code, "SYS-5001")
	}
	if err.Cause != cause {
		t.Error("Cause should be preserved")
	}
	if !errors.Is(err, ErrStorage) {
		t.Error("errors.Is should work after chaining")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
}
