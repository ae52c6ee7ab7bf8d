package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the stable, client-visible code of a domain error
type Kind string

const (
	KindUserNotFound          Kind = "USER_NOT_FOUND"
	KindForbidden             Kind = "FORBIDDEN"
	KindPropertyNotFound      Kind = "PROPERTY_NOT_FOUND"
	KindInvalidAmenityNames   Kind = "INVALID_AMENITY_NAMES"
	KindInvalidHouseRuleNames Kind = "INVALID_HOUSE_RULE_NAMES"
	KindInvalidRange          Kind = "INVALID_RANGE"
	KindConstraintViolation   Kind = "CONSTRAINT_VIOLATION"
	KindValidation            Kind = "VALIDATION_ERROR"
	KindUnauthorized          Kind = "UNAUTHORIZED"
	KindInternal              Kind = "INTERNAL_ERROR"
)

var statusByKind = map[Kind]int{
	KindUserNotFound:          http.StatusNotFound,
	KindForbidden:             http.StatusForbidden,
	KindPropertyNotFound:      http.StatusNotFound,
	KindInvalidAmenityNames:   http.StatusBadRequest,
	KindInvalidHouseRuleNames: http.StatusBadRequest,
	KindInvalidRange:          http.StatusBadRequest,
	KindConstraintViolation:   http.StatusBadRequest,
	KindValidation:            http.StatusBadRequest,
	KindUnauthorized:          http.StatusUnauthorized,
	KindInternal:              http.StatusInternalServerError,
}

// Error is a typed domain error. Details carries the offending values, e.g.
// the catalog names that did not resolve.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Details, ", "))
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can compare against the
// sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrUserNotFound     = &Error{Kind: KindUserNotFound, Message: "user not found"}
	ErrForbidden        = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrPropertyNotFound = &Error{Kind: KindPropertyNotFound, Message: "property not found"}
	ErrInvalidRange     = &Error{Kind: KindInvalidRange, Message: "min_price must be less than or equal to max_price"}
	ErrUnauthorized     = &Error{Kind: KindUnauthorized, Message: "authentication required"}
)

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func InvalidAmenityNames(names []string) *Error {
	return &Error{Kind: KindInvalidAmenityNames, Message: "invalid amenity names", Details: names}
}

func InvalidHouseRuleNames(names []string) *Error {
	return &Error{Kind: KindInvalidHouseRuleNames, Message: "invalid house rule names", Details: names}
}

func ConstraintViolation(message string, details ...string) *Error {
	return &Error{Kind: KindConstraintViolation, Message: message, Details: details}
}

func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// As returns the domain error carried by err, if any
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HTTPStatus maps a kind to the status code the HTTP layer responds with
func HTTPStatus(kind Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
