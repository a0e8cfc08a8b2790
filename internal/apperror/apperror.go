package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP layer can pick a status code
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindUnauthorized     Kind = "unauthorized"
	KindNotConnected     Kind = "not_connected"
	KindAuthentication   Kind = "authentication"
	KindUpstreamAuth     Kind = "upstream_auth"
	KindUpstreamNotFound Kind = "upstream_not_found"
	KindUpstream         Kind = "upstream"
	KindTokenExchange    Kind = "token_exchange"
	KindDecryption       Kind = "decryption"
	KindInvalidState     Kind = "invalid_state"
	KindConfig           Kind = "config"
	KindInternal         Kind = "internal"
)

// Error is the error type shared by every layer of the service
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap creates an Error of the given kind carrying a cause
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// As returns the first *Error in err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Validation(message string) *Error {
	return New(KindValidation, "VALIDATION_ERROR", message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, "NOT_FOUND", message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, "UNAUTHORIZED", message)
}

func NotConnected() *Error {
	return New(KindNotConnected, "GITHUB_NOT_CONNECTED", "GitHub account not connected")
}

func Authentication(err error) *Error {
	return Wrap(KindAuthentication, "AUTHENTICATION_FAILED", "failed to decrypt GitHub token", err)
}

func UpstreamAuth(err error) *Error {
	return Wrap(KindUpstreamAuth, "GITHUB_UNAUTHORIZED", "GitHub rejected the access token", err)
}

func UpstreamNotFound(err error) *Error {
	return Wrap(KindUpstreamNotFound, "GITHUB_NOT_FOUND", "GitHub resource not found", err)
}

func Upstream(err error) *Error {
	return Wrap(KindUpstream, "GITHUB_ERROR", "GitHub request failed", err)
}

func TokenExchange(message string, err error) *Error {
	return Wrap(KindTokenExchange, "TOKEN_EXCHANGE_FAILED", message, err)
}

func Decryption(message string, err error) *Error {
	return Wrap(KindDecryption, "DECRYPTION_FAILED", message, err)
}

func InvalidState(message string, err error) *Error {
	return Wrap(KindInvalidState, "INVALID_STATE", message, err)
}

func Config(message string) *Error {
	return New(KindConfig, "CONFIG_ERROR", message)
}

func Internal(message string, err error) *Error {
	return Wrap(KindInternal, "INTERNAL_ERROR", message, err)
}
