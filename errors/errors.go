/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned by a store when a point lookup matches nothing
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedKeyType is returned when a key is neither a numeric ID nor a string name
	ErrUnsupportedKeyType = errors.New("unsupported key type")

	// ErrUnsupportedFilterKind is returned when a field filter carries an unknown comparison
	ErrUnsupportedFilterKind = errors.New("unsupported filter kind")

	// ErrUnsupportedOrderKind is returned when an order filter carries an unknown direction
	ErrUnsupportedOrderKind = errors.New("unsupported order kind")

	// ErrUnregisteredKind is returned when no kind is registered for a Go type
	ErrUnregisteredKind = errors.New("no kind registered for type")
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// UnsupportedKeyTypeError reports a key whose tag is neither numeric nor named.
type UnsupportedKeyTypeError struct {
	Kind string
	Type int
}

func (e *UnsupportedKeyTypeError) Error() string {
	return fmt.Sprintf("key for %s has unsupported type %d: only numeric IDs and string names are supported", e.Kind, e.Type)
}

func (e *UnsupportedKeyTypeError) Is(target error) bool {
	return target == ErrUnsupportedKeyType
}

// UnsupportedKindError reports a filter or order clause with an unknown kind.
// Clause is either "filter" or "order".
type UnsupportedKindError struct {
	Clause string
	Field  string
	Kind   int
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported %s kind %d on field %q", e.Clause, e.Kind, e.Field)
}

func (e *UnsupportedKindError) Is(target error) bool {
	switch e.Clause {
	case "filter":
		return target == ErrUnsupportedFilterKind
	case "order":
		return target == ErrUnsupportedOrderKind
	}
	return false
}

// UnregisteredKindError names the Go type that has no registered kind.
type UnregisteredKindError struct {
	Type string
}

func (e *UnregisteredKindError) Error() string {
	return fmt.Sprintf("no kind registered for type %s", e.Type)
}

func (e *UnregisteredKindError) Is(target error) bool {
	return target == ErrUnregisteredKind
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewUnsupportedKeyTypeError creates a new UnsupportedKeyTypeError
func NewUnsupportedKeyTypeError(kind string, keyType int) error {
	return &UnsupportedKeyTypeError{Kind: kind, Type: keyType}
}

// NewUnsupportedFilterKindError creates an UnsupportedKindError for a filter clause
func NewUnsupportedFilterKindError(field string, kind int) error {
	return &UnsupportedKindError{Clause: "filter", Field: field, Kind: kind}
}

// NewUnsupportedOrderKindError creates an UnsupportedKindError for an order clause
func NewUnsupportedOrderKindError(field string, kind int) error {
	return &UnsupportedKindError{Clause: "order", Field: field, Kind: kind}
}

// NewUnregisteredKindError creates a new UnregisteredKindError
func NewUnregisteredKindError(typeName string) error {
	return &UnregisteredKindError{Type: typeName}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnsupportedKeyType checks if an error is an unsupported key type error
func IsUnsupportedKeyType(err error) bool {
	return errors.Is(err, ErrUnsupportedKeyType)
}

// IsUnsupportedKind checks if an error reports an unknown filter or order kind
func IsUnsupportedKind(err error) bool {
	return errors.Is(err, ErrUnsupportedFilterKind) || errors.Is(err, ErrUnsupportedOrderKind)
}

// IsUnregisteredKind checks if an error reports a missing kind registration
func IsUnregisteredKind(err error) bool {
	return errors.Is(err, ErrUnregisteredKind)
}
