// Package apperr defines the failure taxonomy shared by the server and the client.
//
// Every failure that crosses a layer boundary is either an *Error tagged with a Kind,
// or an untyped error that callers must treat as KindServer.
package apperr

import (
	"errors"
	"net/http"
	"sort"
)

// Kind classifies a failure.
type Kind int

const (
	// KindServer is the zero value so that unclassified errors never leak as a domain outcome.
	KindServer Kind = iota
	KindValidation
	KindAuthentication
	KindInvalidCredentials
	KindConflict
	KindNotFound
)

var kindNames = map[Kind]string{
	KindServer:             "server_error",
	KindValidation:         "validation",
	KindAuthentication:     "authentication",
	KindInvalidCredentials: "invalid_credentials",
	KindConflict:           "conflict",
	KindNotFound:           "not_found",
}

// String returns the stable wire code for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindServer]
}

// HTTPStatus returns the response status used for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthentication, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ParseKind maps a wire code back to a Kind. ok is false for unknown codes.
func ParseKind(code string) (Kind, bool) {
	for k, name := range kindNames {
		if name == code {
			return k, true
		}
	}
	return KindServer, false
}

// KindFromStatus guesses a Kind from a bare HTTP status when no code is available.
func KindFromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindServer
	}
}

// Error is a classified failure with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages keyed by JSON field name.
	Fields map[string]string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

// Unwrap provides compatibility for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Detail returns a single-line message including the first field error, if any.
func (e *Error) Detail() string {
	if len(e.Fields) == 0 {
		return e.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e.Error() + ": " + e.Fields[keys[0]]
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind that wraps cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf classifies err. Errors outside the taxonomy are KindServer.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindServer
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
