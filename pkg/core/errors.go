package core

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes leaptable failures.
type ErrorKind string

const (
	// KindConfig marks missing or invalid configuration. Fatal at start-up.
	KindConfig ErrorKind = "config"
	// KindConnection marks an unreachable database. Fatal at start-up.
	KindConnection ErrorKind = "connection"
	// KindSchema marks a missing table or column.
	KindSchema ErrorKind = "schema"
	// KindQuery marks a statement rejected while building or executing.
	KindQuery ErrorKind = "query"
	// KindState marks an operation that is not valid in the current session state.
	KindState ErrorKind = "state"
)

// Error is a categorized error with the operation that produced it.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a configuration error.
func NewConfigError(op, message string, cause error) *Error {
	return &Error{Kind: KindConfig, Op: op, Message: message, Cause: cause}
}

// NewConnectionError creates a connection error.
func NewConnectionError(op, message string, cause error) *Error {
	return &Error{Kind: KindConnection, Op: op, Message: message, Cause: cause}
}

// NewSchemaError creates a schema error.
func NewSchemaError(op, message string, cause error) *Error {
	return &Error{Kind: KindSchema, Op: op, Message: message, Cause: cause}
}

// NewQueryError creates a query error.
func NewQueryError(op, message string, cause error) *Error {
	return &Error{Kind: KindQuery, Op: op, Message: message, Cause: cause}
}

// NewStateError creates a state error.
func NewStateError(op, message string) *Error {
	return &Error{Kind: KindState, Op: op, Message: message}
}

// IsKind reports whether any error in err's chain is a core error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// KindOf returns the kind of the outermost core error in err's chain, or "".
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
