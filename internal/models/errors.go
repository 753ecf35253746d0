package models

import "fmt"

// NotFoundError: a referenced alert, code or type does not exist.
type NotFoundError struct {
	Resource   string
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Identifier)
}

func NewNotFound(resource, identifier string) error {
	return &NotFoundError{Resource: resource, Identifier: identifier}
}

// InvalidInputError: a business-rule violation caught before any mutation.
// For multi-item requests every offending identifier is collected into one
// message so the caller can fix everything in a single pass.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

func NewInvalidInput(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// AlreadyExistsError: an active alert already exists where creation was
// attempted outside a reconciler context.
type AlreadyExistsError struct {
	Message string
}

func (e *AlreadyExistsError) Error() string {
	return e.Message
}

func NewAlreadyExists(format string, args ...interface{}) error {
	return &AlreadyExistsError{Message: fmt.Sprintf(format, args...)}
}

// DownstreamError: an external collaborator failed; the operation aborts with
// no partial commit and no retry at this layer.
type DownstreamError struct {
	Service string
	Err     error
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("downstream service %s failed: %v", e.Service, e.Err)
}

func (e *DownstreamError) Unwrap() error {
	return e.Err
}

func NewDownstream(service string, err error) error {
	return &DownstreamError{Service: service, Err: err}
}
