package common

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error is the tagged error returned by services. Kind is one of the
// sentinels in errors.go, so callers match it with errors.Is.
type Error struct {
	Op       string
	Kind     error
	Resource string
	ID       any
	Field    string
	Msg      string
	Fields   map[string]string
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message())
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %s", k, e.Fields[k])
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

// Message is the caller-facing text for the error.
func (e *Error) Message() string {
	if e.Msg != "" {
		return e.Msg
	}
	switch {
	case e.Resource != "" && e.ID != nil:
		return fmt.Sprintf("%s not found with id: %v", e.Resource, e.ID)
	case e.Kind != nil:
		return e.Kind.Error()
	default:
		return "error"
	}
}

// NotFound reports a missing resource, e.g. NotFound(op, "User", 7).
func NotFound(op, resource string, id any) *Error {
	return &Error{Op: op, Kind: ErrorNotFound, Resource: resource, ID: id}
}

// Duplicate reports a unique-field collision.
func Duplicate(op, field string, value any) *Error {
	return &Error{
		Op:    op,
		Kind:  ErrorDuplicate,
		Field: field,
		Msg:   fmt.Sprintf("%s already exists: %v", field, value),
	}
}

// Validation reports a field-level input or business-rule failure.
func Validation(op, msg string, fields map[string]string) *Error {
	if msg == "" {
		msg = "Validation failed"
	}
	return &Error{Op: op, Kind: ErrorValidation, Msg: msg, Fields: fields}
}

// InvalidCredentials is returned for both an unknown email and a wrong password.
func InvalidCredentials(op string) *Error {
	return &Error{Op: op, Kind: ErrorInvalidCredentials, Msg: "Invalid email or password"}
}

func Unauthorized(op string) *Error {
	return &Error{Op: op, Kind: ErrorUnauthorized, Msg: "Authentication required"}
}

func Forbidden(op, resource string, id any) *Error {
	return &Error{
		Op:       op,
		Kind:     ErrorForbidden,
		Resource: resource,
		ID:       id,
		Msg:      fmt.Sprintf("not allowed to modify %s %v", resource, id),
	}
}

// Conflict reports a stale expected version on update.
func Conflict(op, resource string, id any) *Error {
	return &Error{
		Op:       op,
		Kind:     ErrVersionConflict,
		Resource: resource,
		ID:       id,
		Msg:      fmt.Sprintf("%s %v was modified concurrently", resource, id),
	}
}

// AsError extracts the tagged error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
