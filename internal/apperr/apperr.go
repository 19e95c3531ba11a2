// Package apperr defines the error taxonomy shared by all services.
// Handlers classify an error with errors.Is against the sentinels below
// and map it to an HTTP status; everything unmatched is a 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound: room, session or participant unknown.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized: host-secret mismatch.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConflict: state-machine precondition violated (wrong status,
	// not your turn, room locked).
	ErrConflict = errors.New("conflict")
	// ErrValidation: missing or empty required field.
	ErrValidation = errors.New("validation")
	// ErrUpstream: AI collaborator call failed or returned unparseable
	// output.
	ErrUpstream = errors.New("upstream failure")
)

// NotFoundf wraps ErrNotFound with a formatted message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Unauthorizedf wraps ErrUnauthorized with a formatted message.
func Unauthorizedf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUnauthorized)...)
}

// Conflictf wraps ErrConflict with a formatted message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

// Validationf wraps ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Upstreamf wraps ErrUpstream with a formatted message.
func Upstreamf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrUpstream)...)
}

// HTTPStatus maps a classified error to its HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
