package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the typed form of a 404 from the backend.
	ErrNotFound = errors.New("resource not found")

	// ErrSessionExpired is the typed form of a 401. Call sites react by
	// tearing the session down and redirecting to sign-in; the client
	// itself only reports it.
	ErrSessionExpired = errors.New("session expired")
)

// APIError is the single error shape every backend failure is normalized
// into, regardless of the original response's content type.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == 404
	case ErrSessionExpired:
		return e.Status == 401
	}
	return false
}
