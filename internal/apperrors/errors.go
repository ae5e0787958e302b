package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewAnimeNotFoundError creates a specific error for when an anime title cannot be resolved.
func NewAnimeNotFoundError(name string) *ErrNotFound {
	return &ErrNotFound{
		Resource: "anime",
		ID:       name,
	}
}

// ErrUnauthorized is returned when the backend rejects the bearer token (HTTP 401/403)
// or when the stored token has already expired locally.
type ErrUnauthorized struct {
	Endpoint string
	Detail   string
}

// Error implements the error interface.
func (e *ErrUnauthorized) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unauthorized for %s: %s", e.Endpoint, e.Detail)
	}
	return fmt.Sprintf("unauthorized for %s", e.Endpoint)
}

// Is allows for error checking with errors.Is().
func (e *ErrUnauthorized) Is(target error) bool {
	_, ok := target.(*ErrUnauthorized)
	return ok
}

// ErrBackendStatus is returned for any other non-2xx backend response.
// Detail carries the backend's "detail" field when present.
type ErrBackendStatus struct {
	Endpoint   string
	StatusCode int
	Detail     string
}

// Error implements the error interface.
func (e *ErrBackendStatus) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
}

// Is allows for error checking with errors.Is().
func (e *ErrBackendStatus) Is(target error) bool {
	_, ok := target.(*ErrBackendStatus)
	return ok
}
