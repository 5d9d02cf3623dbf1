package swap

import (
	"errors"
	"fmt"
)

// Code classifies a swap failure. The set is closed: every error surfaced
// by the engine carries exactly one of these.
type Code string

const (
	CodeInvalidMintAddress  Code = "INVALID_MINT_ADDRESS"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeInvalidSlippage     Code = "INVALID_SLIPPAGE"
	CodeInvalidKeyMaterial  Code = "INVALID_KEY_MATERIAL"
	CodeNoAvailableEndpoint Code = "NO_AVAILABLE_ENDPOINT"
	CodeQuoteUnavailable    Code = "QUOTE_UNAVAILABLE"
	CodeBuildFailed         Code = "BUILD_FAILED"
	CodeSubmissionFailed    Code = "SUBMISSION_FAILED"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeUnknown             Code = "UNKNOWN_ERROR"
)

// Error is a classified swap failure. The wrapped cause is kept for logs;
// Message is safe to return to callers.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// NewError creates a classified error wrapping an optional cause.
func NewError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf extracts the classification from an error chain.
// Unclassified errors map to CodeUnknown.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeUnknown
}
