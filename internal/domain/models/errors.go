package models

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input. Index is the offending transaction position, or -1.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("Transaction %d: %s", e.Index, e.Reason)
	}
	return e.Reason
}

// NewValidationError builds a ValidationError not tied to a transaction index.
func NewValidationError(field, format string, a ...interface{}) *ValidationError {
	return &ValidationError{Index: -1, Field: field, Reason: fmt.Sprintf(format, a...)}
}

// NotFoundError reports an unknown user, loan, offer or payment.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StateConflictError is returned when an action targets a resource in the wrong state.
// Current carries the observed state so callers can resynchronize.
type StateConflictError struct {
	Resource string
	ID       string
	Current  string
	Expected []string
	Detail   string
}

func (e *StateConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Resource, e.ID)
	if e.Current != "" {
		fmt.Fprintf(&b, " is %s", e.Current)
	}
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, ", expected %s", strings.Join(e.Expected, " or "))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// OwnershipError is returned when a lender acts on a loan it does not own.
type OwnershipError struct {
	Resource string
	ID       string
	Actor    string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("%s does not own %s %s", e.Actor, e.Resource, e.ID)
}
