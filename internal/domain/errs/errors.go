// Package errs defines the failure taxonomy shared by the orchestrators and
// the transport layer. Every kind carries a stable, inspectable message.
package errs

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned for any failed login. It is the same
// value whether the user is unknown or the password does not match.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ConflictError reports a uniqueness violation on a user field.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("user with duplicate %s already exists", e.Field)
	}
	return fmt.Sprintf("user with %s %s already exists", e.Field, e.Value)
}

// NotFoundError reports a missing user or role.
type NotFoundError struct {
	Resource string
	Field    string
	Value    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s %s not found", e.Resource, e.Field, e.Value)
}

// InvalidArgumentError reports malformed caller input.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConfigurationError reports a deployment defect such as a missing default
// role. It fails the operation, not the process.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Msg
}

// PersistenceError wraps an unexpected store failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func UserNotFound(field, value string) error {
	return &NotFoundError{Resource: "user", Field: field, Value: value}
}

func RoleNotConfigured(name string) error {
	return &ConfigurationError{Msg: fmt.Sprintf("role %q not found, ensure it is seeded", name)}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
