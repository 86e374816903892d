package ecs

import (
	"fmt"
	"time"
)

// ECSError is the error type returned by every recoverable failure mode
// in this package. It carries enough structured context (entity,
// component, field, source) for the caller's logger to attach fields
// instead of re-parsing a formatted message.
type ECSError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Component string    `json:"component,omitempty"`
	Entity    EntityID  `json:"entity,omitempty"`
	Field     string    `json:"field,omitempty"`
	Source    string    `json:"source,omitempty"` // file + entity index, for loader diagnostics
	Timestamp time.Time `json:"timestamp"`
}

func (e *ECSError) Error() string {
	if e.Component != "" && e.Field != "" {
		return fmt.Sprintf("[%s] %s (component: %s, field: %s)", e.Code, e.Message, e.Component, e.Field)
	}
	if e.Component != "" {
		return fmt.Sprintf("[%s] %s (component: %s)", e.Code, e.Message, e.Component)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is lets errors.Is(err, &ECSError{Code: ErrUnknownType}) style checks
// match on Code alone; the code constants below are strings, so the
// target must be an *ECSError carrying one of them.
func (e *ECSError) Is(target error) bool {
	t, ok := target.(*ECSError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *ECSError) WithEntity(id EntityID) *ECSError {
	e.Entity = id
	return e
}

func (e *ECSError) WithComponent(key ComponentType) *ECSError {
	e.Component = string(key)
	return e
}

func (e *ECSError) WithField(name string) *ECSError {
	e.Field = name
	return e
}

func (e *ECSError) WithSource(source string) *ECSError {
	e.Source = source
	return e
}

// Error codes, one per kind in SPEC_FULL.md §7 / spec.md §4.2 and §7.
const (
	ErrUnknownType            = "UNKNOWN_TYPE"
	ErrTypeMismatch           = "TYPE_MISMATCH"
	ErrUnknownKey             = "UNKNOWN_KEY"
	ErrInvalidHook            = "INVALID_HOOK"
	ErrUnknownComponent       = "UNKNOWN_COMPONENT"
	ErrUnknownEvent           = "UNKNOWN_EVENT"
	ErrMalformedBytes         = "MALFORMED_BYTES"
	ErrInvalidHookExpression  = "INVALID_HOOK_EXPRESSION"
	ErrMissingConfigField     = "MISSING_CONFIGURATION_FIELD"
	ErrHookRecursionLimit     = "HOOK_RECURSION_LIMIT"
	ErrEntityNotFound         = "ENTITY_NOT_FOUND"
	ErrInvalidEntityID        = "INVALID_ENTITY_ID"
)

func newErr(code, message string) *ECSError {
	return &ECSError{Code: code, Message: message, Timestamp: time.Now()}
}

// EntityNotFoundErr reports that an entity id has no occupied slot for
// an operation that requires one.
func EntityNotFoundErr(id EntityID) *ECSError {
	return newErr(ErrEntityNotFound, fmt.Sprintf("entity %d not found", id)).WithEntity(id)
}

// UnknownComponentErr reports a component key with no registration.
func UnknownComponentErr(key ComponentType) *ECSError {
	return newErr(ErrUnknownComponent, fmt.Sprintf("component %q is not registered", key)).WithComponent(key)
}

// UnknownEventErr reports an event name with no registration.
func UnknownEventErr(name string) *ECSError {
	return newErr(ErrUnknownEvent, fmt.Sprintf("event %q is not registered", name))
}

// TypeMismatchErr reports an opaque accessor re-typed to the wrong
// concrete type.
func TypeMismatchErr(key ComponentType, field string) *ECSError {
	return newErr(ErrTypeMismatch, fmt.Sprintf("field %q of %q has a different concrete type", field, key)).
		WithComponent(key).WithField(field)
}

// InvalidHookErr reports a field name absent from a type's hook table.
func InvalidHookErr(key ComponentType, field string) *ECSError {
	return newErr(ErrInvalidHook, fmt.Sprintf("component %q has no hook named %q", key, field)).
		WithComponent(key).WithField(field)
}

// MalformedBytesErr reports a decode failure (short buffer, bad tag).
func MalformedBytesErr(detail string) *ECSError {
	return newErr(ErrMalformedBytes, detail)
}

// InvalidHookExpressionErr reports a hook-expression grammar violation.
func InvalidHookExpressionErr(expr, detail string) *ECSError {
	return newErr(ErrInvalidHookExpression, fmt.Sprintf("%q: %s", expr, detail))
}

// MissingConfigFieldErr reports a required key absent from a loader
// configuration object, with a source identifier for diagnostics.
func MissingConfigFieldErr(source string, key ComponentType, field string) *ECSError {
	return newErr(ErrMissingConfigField, fmt.Sprintf("missing field %q", field)).
		WithComponent(key).WithField(field).WithSource(source)
}

// HookRecursionLimitErr is fatal: emission nested deeper than the
// implementation-chosen bound.
func HookRecursionLimitErr(limit int) *ECSError {
	return newErr(ErrHookRecursionLimit, fmt.Sprintf("event emission recursion exceeded %d levels", limit))
}
