package errors

import (
	"fmt"
	"io"
)

// DynError is the interface implemented by all dyntype errors.
type DynError interface {
	error
	Kind() string // e.g. "UnresolvedProperty", "UnsupportedOperator"
	// Message returns the specific error message without the kind prefix.
	Message() string
	Unwrap() error
}

// --- Concrete Error Types ---

// UnresolvedPropertyError reports a property name that was not found anywhere
// in a type's inheritance chain.
type UnresolvedPropertyError struct {
	Name     string
	TypeName string
	Cause    error
}

func (e *UnresolvedPropertyError) Error() string {
	return "Unresolved Property: " + e.Message()
}
func (e *UnresolvedPropertyError) Kind() string { return "UnresolvedProperty" }
func (e *UnresolvedPropertyError) Message() string {
	return fmt.Sprintf("no property %q on type %s", e.Name, e.TypeName)
}
func (e *UnresolvedPropertyError) Unwrap() error { return e.Cause }
func (e *UnresolvedPropertyError) CausedBy(cause error) *UnresolvedPropertyError {
	e.Cause = cause
	return e
}

// UnresolvedMethodError reports a method name (and optionally a signature)
// that no overload in the inheritance chain matches.
type UnresolvedMethodError struct {
	Name      string
	Signature string
	TypeName  string
	Cause     error
}

func (e *UnresolvedMethodError) Error() string {
	return "Unresolved Method: " + e.Message()
}
func (e *UnresolvedMethodError) Kind() string { return "UnresolvedMethod" }
func (e *UnresolvedMethodError) Message() string {
	if e.Signature == "" {
		return fmt.Sprintf("no method %q on type %s", e.Name, e.TypeName)
	}
	return fmt.Sprintf("no method %s%s on type %s", e.Name, e.Signature, e.TypeName)
}
func (e *UnresolvedMethodError) Unwrap() error { return e.Cause }
func (e *UnresolvedMethodError) CausedBy(cause error) *UnresolvedMethodError {
	e.Cause = cause
	return e
}

// UnsupportedOperationError is returned when a descriptor is used against a
// receiver that lacks the capability it needs. It indicates a code
// generation bug rather than bad runtime data.
type UnsupportedOperationError struct {
	Op       string // "read", "write", "invoke", ...
	TypeName string
	Member   string
	Msg      string
	Cause    error
}

func (e *UnsupportedOperationError) Error() string {
	return "Unsupported Operation: " + e.Message()
}
func (e *UnsupportedOperationError) Kind() string { return "UnsupportedOperation" }
func (e *UnsupportedOperationError) Message() string {
	msg := e.Op
	if e.TypeName != "" {
		msg += " " + e.TypeName
		if e.Member != "" {
			msg += "." + e.Member
		}
	} else if e.Member != "" {
		msg += " " + e.Member
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	return msg
}
func (e *UnsupportedOperationError) Unwrap() error { return e.Cause }
func (e *UnsupportedOperationError) CausedBy(cause error) *UnsupportedOperationError {
	e.Cause = cause
	return e
}

// UnsupportedOperatorError reports an operator that the value kind of the
// operand does not implement, such as bitwise and on floats.
type UnsupportedOperatorError struct {
	Operator  string
	ValueKind string
	Cause     error
}

func (e *UnsupportedOperatorError) Error() string {
	return "Unsupported Operator: " + e.Message()
}
func (e *UnsupportedOperatorError) Kind() string { return "UnsupportedOperator" }
func (e *UnsupportedOperatorError) Message() string {
	return fmt.Sprintf("operator %q is not defined for %s", e.Operator, e.ValueKind)
}
func (e *UnsupportedOperatorError) Unwrap() error { return e.Cause }
func (e *UnsupportedOperatorError) CausedBy(cause error) *UnsupportedOperatorError {
	e.Cause = cause
	return e
}

// SlotConflictError is a consistency-check failure raised while flattening a
// type's property table.
type SlotConflictError struct {
	TypeName    string
	Slot        int
	Existing    string
	Conflicting string
	Static      bool
	Msg         string
	Cause       error
}

func (e *SlotConflictError) Error() string {
	return "Slot Conflict: " + e.Message()
}
func (e *SlotConflictError) Kind() string { return "SlotConflict" }
func (e *SlotConflictError) Message() string {
	if e.Msg != "" {
		return fmt.Sprintf("type %s: %s", e.TypeName, e.Msg)
	}
	table := "instance"
	if e.Static {
		table = "static"
	}
	return fmt.Sprintf("type %s: %s slot %d claimed by both %q and %q",
		e.TypeName, table, e.Slot, e.Existing, e.Conflicting)
}
func (e *SlotConflictError) Unwrap() error { return e.Cause }
func (e *SlotConflictError) CausedBy(cause error) *SlotConflictError {
	e.Cause = cause
	return e
}

// ArithmeticError is raised by integer division or remainder by zero.
type ArithmeticError struct {
	Msg   string
	Cause error
}

func (e *ArithmeticError) Error() string   { return "Arithmetic Error: " + e.Msg }
func (e *ArithmeticError) Kind() string    { return "Arithmetic" }
func (e *ArithmeticError) Message() string { return e.Msg }
func (e *ArithmeticError) Unwrap() error   { return e.Cause }
func (e *ArithmeticError) CausedBy(cause error) *ArithmeticError {
	e.Cause = cause
	return e
}

// SyntaxError represents an error while tokenizing or parsing an expression
// or a literal. Pos is the rune offset into the source.
type SyntaxError struct {
	Pos   int
	Msg   string
	Cause error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d: %s", e.Pos, e.Msg)
}
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// --- Helpers ---

// KindOf returns the Kind of err if it is a DynError, otherwise "".
func KindOf(err error) string {
	for err != nil {
		if de, ok := err.(DynError); ok {
			return de.Kind()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// IsUnresolved reports whether err is a name lookup failure, which the
// facade degrades instead of escalating.
func IsUnresolved(err error) bool {
	switch KindOf(err) {
	case "UnresolvedProperty", "UnresolvedMethod":
		return true
	}
	return false
}

// --- Error Reporting ---

// DisplayErrors prints a list of errors to w, one per line.
// Format: <Kind> Error: <Message>
func DisplayErrors(w io.Writer, errs []error) {
	for _, err := range errs {
		if err == nil {
			continue
		}
		if de, ok := err.(DynError); ok {
			fmt.Fprintf(w, "%s Error: %s\n", de.Kind(), de.Message())
			continue
		}
		fmt.Fprintf(w, "Error: %s\n", err.Error())
	}
}
