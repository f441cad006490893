// Package domainerrors defines the coded error taxonomy shared by services and
// the HTTP transport. Services translate store sentinels into coded errors;
// the transport maps codes to status codes without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error for transport mapping and callers that branch
// on failure kind.
type Code string

const (
	// CodeNotFound signals a missing consortium, tenant, association or setting.
	CodeNotFound Code = "not_found"
	// CodeAlreadyExists signals a singleton or uniqueness violation.
	CodeAlreadyExists Code = "already_exists"
	// CodeValidation signals id mismatches, illegal tenant pairs, or malformed
	// pagination bounds.
	CodeValidation Code = "validation"
	// CodeUpstream signals a failed resource/user-service call; the message
	// carries the upstream's reason.
	CodeUpstream Code = "upstream_failure"
	// CodeSetupFailure signals an affiliation-sync pre-loop failure.
	CodeSetupFailure Code = "setup_failure"
	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. A nil cause yields nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its transport status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeSetupFailure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
