package router

import (
	"fmt"
	"net/http"
)

// Error classifies why a request could not be served. Each value maps to
// exactly one status code.
type Error int

const (
	ErrNotImplemented Error = iota
	ErrNotFound
	ErrBadRequest
	ErrInternal
)

func (e Error) Error() string {
	switch e {
	case ErrNotImplemented:
		return "method not implemented"
	case ErrNotFound:
		return "not found"
	case ErrBadRequest:
		return "bad request"
	case ErrInternal:
		return "internal error"
	default:
		return fmt.Sprintf("unknown router error: %d", int(e))
	}
}

// StatusCode returns the HTTP status reported to the client for e.
func (e Error) StatusCode() int {
	switch e {
	case ErrNotImplemented:
		return http.StatusNotImplemented
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// wrap attaches cause to kind so that errors.Is(err, kind) holds while the
// cause remains available for logging.
func wrap(kind Error, cause error) error {
	return fmt.Errorf("%w: %w", kind, cause)
}
