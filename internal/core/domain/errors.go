package domain

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")
var ErrConflict = errors.New("already exists")

// ErrInvalidCredentials is returned by login for an unknown username, a wrong
// password and a disabled account alike.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// ErrUnauthorized is returned when a bearer token cannot be resolved to an
// active user.
var ErrUnauthorized = errors.New("could not validate credentials")

// NotFoundError reports a missing entity. Key is the id or natural key used
// for the lookup.
type NotFoundError struct {
	Entity string
	Key    any
}

func NewNotFound(entity string, key any) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a uniqueness violation on a single field.
type ConflictError struct {
	Entity string
	Field  string
	Value  string
}

func NewConflict(entity, field, value string) *ConflictError {
	return &ConflictError{Entity: entity, Field: field, Value: value}
}

func (e *ConflictError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s %s already exists", e.Entity, e.Field)
	}
	return fmt.Sprintf("%s '%s' already exists", e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
