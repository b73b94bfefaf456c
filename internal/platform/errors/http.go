package errors

import (
	stderrors "errors"
	"net/http"
)

// HTTPStatusFor resolves the HTTP status for any error by locating the
// nearest domain error in its chain. Errors without a domain error in the
// chain report as internal failures.
func HTTPStatusFor(err error) int {
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Code.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// CodeFor resolves the machine-readable code for any error. Errors without
// a domain error in the chain report CodeUnknown.
func CodeFor(err error) Code {
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// MessageFor resolves the user-visible message for any error. Errors
// without a domain error in the chain report a generic message so
// infrastructure details never reach response bodies.
func MessageFor(err error) string {
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "internal error"
}
