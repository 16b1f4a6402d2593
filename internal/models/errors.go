package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("models: user not found")
	ErrRequestNotFound    = errors.New("models: service request not found")
	ErrProviderNotFound   = errors.New("models: service provider not found")
	ErrSessionNotFound    = errors.New("models: session not found")
	ErrInvalidCredentials = errors.New("models: invalid credentials")
	ErrDuplicateEmail     = errors.New("models: duplicate email")
	ErrDuplicatePhone     = errors.New("models: duplicate phone number")
	ErrResetTokenInvalid  = errors.New("models: reset token invalid or expired")
)

// Lifecycle failures. Every illegal operation on a service request maps to
// exactly one of these, never to a generic error.
var (
	ErrUnauthorized      = errors.New("models: actor is not the customer or provider of record")
	ErrInvalidTransition = errors.New("models: status precondition not met")
	ErrAlreadyTerminal   = errors.New("models: request already in a terminal status")
	ErrNotDeletable      = errors.New("models: request can only be deleted when rejected or cancelled")
	ErrAccountPending    = errors.New("models: account awaiting approval")
	ErrAccountInactive   = errors.New("models: account is not active")
)

// ErrStatusConflict is returned by guarded status updates when the row no
// longer satisfies the expected precondition at write time. Callers re-fetch
// and classify it as ErrInvalidTransition, ErrAlreadyTerminal or
// ErrUnauthorized depending on what actually changed.
var ErrStatusConflict = errors.New("models: concurrent status change")

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}
