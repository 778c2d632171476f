// Package apperr defines the application error taxonomy. Every failure a
// handler can surface is an *Error with a Kind discriminator; ToHTTP maps any
// error to a status code and a wire body, collapsing unknown failures into a
// generic internal fault.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

// Kind discriminates error categories.
type Kind int

const (
	// KindValidation marks malformed input caught before storage or upstream.
	KindValidation Kind = iota
	// KindConflict marks an email/username uniqueness violation.
	KindConflict
	// KindAuthentication marks a failed credential check at login.
	KindAuthentication
	// KindUnauthorized marks a missing, malformed, invalid or expired token.
	KindUnauthorized
	// KindNotFound marks a referenced resource that does not exist.
	KindNotFound
	// KindGateway marks an upstream proxy failure.
	KindGateway
	// KindInternal marks any unexpected fault.
	KindInternal
)

// Error is a tagged application error.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
}

func (e *Error) Error() string { return e.Message }

// Validation reports the full list of violated fields.
func Validation(fields ...string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "invalid fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

// ValidationMsg reports a single validation failure with a custom message.
func ValidationMsg(msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Conflict reports a uniqueness violation on the given field.
func Conflict(field string) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: field + " already in use",
		Fields:  []string{field},
	}
}

// Authentication reports failed login credentials. The message is identical
// whether the identifier was unknown or the password wrong, so callers cannot
// enumerate accounts.
func Authentication() *Error {
	return &Error{Kind: KindAuthentication, Message: "invalid credentials"}
}

// Unauthorized reports a rejected bearer token. Invalid and expired tokens
// produce the same response on purpose.
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "invalid or expired token"}
}

// NotFound reports a missing resource.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Gateway reports an upstream failure. The internal cause is logged at the
// call site and never included here.
func Gateway() *Error {
	return &Error{Kind: KindGateway, Message: "error fetching data from upstream F1 API"}
}

// Response is the wire shape of every error body.
type Response struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// ToHTTP maps an error to an HTTP status and response body. Errors that are
// not *Error become a generic internal fault with no detail leaked.
func ToHTTP(err error) (int, Response) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, Response{Error: "internal server error", Code: "INTERNAL_ERROR"}
	}
	switch appErr.Kind {
	case KindValidation:
		return http.StatusBadRequest, Response{Error: appErr.Message, Code: "VALIDATION_ERROR", Fields: appErr.Fields}
	case KindConflict:
		return http.StatusConflict, Response{Error: appErr.Message, Code: "CONFLICT", Fields: appErr.Fields}
	case KindAuthentication:
		return http.StatusUnauthorized, Response{Error: appErr.Message, Code: "INVALID_CREDENTIALS"}
	case KindUnauthorized:
		return http.StatusUnauthorized, Response{Error: appErr.Message, Code: "UNAUTHORIZED"}
	case KindNotFound:
		return http.StatusNotFound, Response{Error: appErr.Message, Code: "NOT_FOUND"}
	case KindGateway:
		return http.StatusBadGateway, Response{Error: appErr.Message, Code: "BAD_GATEWAY"}
	default:
		return http.StatusInternalServerError, Response{Error: "internal server error", Code: "INTERNAL_ERROR"}
	}
}
