// Package kind implements operator evaluation over boxed values for a closed
// set of primitive-like value kinds.
//
// A Kind is selected from the runtime type of an operand (see Of) and then
// evaluates arithmetic, comparison, unary and cast operators with the
// conversion rules of the source language: 32-bit int and 64-bit long
// wrap-around arithmetic, IEEE float and double, string concatenation.
// Unsupported operator/kind combinations return an UnsupportedOperatorError.
package kind

import (
	"fmt"
	"strings"

	"dyntype/pkg/box"
	"dyntype/pkg/errors"
)

// Kind identifies one value kind. The zero value is Bool.
type Kind uint8

const (
	Bool Kind = iota
	Byte
	Short
	Char
	Int
	Float
	Long
	Double
	String
	Object
	Number // generic numeric; promotes to Long or Double per operand
	Void

	numKinds
)

var kindNames = [numKinds]string{
	Bool:   "boolean",
	Byte:   "byte",
	Short:  "short",
	Char:   "char",
	Int:    "int",
	Float:  "float",
	Long:   "long",
	Double: "double",
	String: "String",
	Object: "Object",
	Number: "Number",
	Void:   "void",
}

// boxedNames are the class names of the boxed representations.
var boxedNames = [numKinds]string{
	Bool:   "java.lang.Boolean",
	Byte:   "java.lang.Byte",
	Short:  "java.lang.Short",
	Char:   "java.lang.Character",
	Int:    "java.lang.Integer",
	Float:  "java.lang.Float",
	Long:   "java.lang.Long",
	Double: "java.lang.Double",
	String: "java.lang.String",
	Object: "java.lang.Object",
	Number: "java.lang.Number",
	Void:   "java.lang.Void",
}

// descriptors are the single-letter (or class) forms used in parameter
// signatures.
var descriptors = [numKinds]string{
	Bool:   "Z",
	Byte:   "B",
	Short:  "S",
	Char:   "C",
	Int:    "I",
	Float:  "F",
	Long:   "J",
	Double: "D",
	String: "Ljava/lang/String;",
	Object: "Ljava/lang/Object;",
	Number: "Ljava/lang/Number;",
	Void:   "V",
}

var byName map[string]Kind

func init() {
	byName = make(map[string]Kind, 4*int(numKinds))
	for k := Kind(0); k < numKinds; k++ {
		byName[kindNames[k]] = k
		byName[boxedNames[k]] = k
		byName[descriptors[k]] = k
		byName[boxedNames[k][strings.LastIndexByte(boxedNames[k], '.')+1:]] = k
	}
	byName["java/lang/String"] = String
	byName["java/lang/Object"] = Object
	byName["java/lang/Number"] = Number
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// BoxedName returns the class name of the kind's boxed representation.
func (k Kind) BoxedName() string {
	if k < numKinds {
		return boxedNames[k]
	}
	return ""
}

// Descriptor returns the signature encoding of the kind.
func (k Kind) Descriptor() string {
	if k < numKinds {
		return descriptors[k]
	}
	return ""
}

// ForName resolves a primitive name ("int"), a boxed class name
// ("java.lang.Integer" or "Integer") or a descriptor ("I").
func ForName(name string) (Kind, bool) {
	k, ok := byName[name]
	return k, ok
}

// Of returns the kind for the runtime type of v. Unregistered types,
// including nil, are Object.
func Of(v any) Kind {
	switch v.(type) {
	case bool:
		return Bool
	case box.Byte, int8:
		return Byte
	case box.Short, int16:
		return Short
	case box.Char, uint16:
		return Char
	case box.Int, int32, int:
		return Int
	case box.Float, float32:
		return Float
	case box.Long, int64:
		return Long
	case box.Double, float64:
		return Double
	case string:
		return String
	}
	return Object
}

// IsIntegral reports whether k is one of the integer family kinds.
func (k Kind) IsIntegral() bool {
	switch k {
	case Byte, Short, Char, Int, Long:
		return true
	}
	return false
}

// IsFloating reports whether k is Float or Double.
func (k Kind) IsFloating() bool { return k == Float || k == Double }

// IsNumeric reports whether k is integral, floating, or the generic Number.
func (k Kind) IsNumeric() bool { return k.IsIntegral() || k.IsFloating() || k == Number }

// IsPrimitive reports whether k has a primitive (non-reference) form.
func (k Kind) IsPrimitive() bool {
	return k == Bool || k.IsIntegral() || k.IsFloating()
}

// DefaultValue returns the zero value of the kind: false, a boxed zero of
// the kind's width, or nil for reference kinds.
func (k Kind) DefaultValue() any {
	switch k {
	case Bool:
		return false
	case Byte:
		return box.Byte(0)
	case Short:
		return box.Short(0)
	case Char:
		return box.Char(0)
	case Int:
		return box.Int(0)
	case Float:
		return box.Float(0)
	case Long:
		return box.Long(0)
	case Double:
		return box.Double(0)
	}
	return nil
}

// ToString renders v the way string concatenation does; nil is "null".
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float32:
		return box.FormatFloat(float64(x), 32)
	case float64:
		return box.FormatFloat(x, 64)
	case uint16:
		return string(rune(x))
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func unsupported(op string, k Kind) error {
	return &errors.UnsupportedOperatorError{Operator: op, ValueKind: k.String()}
}

func badOperand(op string, k Kind, v any) error {
	return &errors.UnsupportedOperatorError{
		Operator:  op,
		ValueKind: fmt.Sprintf("%s with %s operand", k, Of(v)),
	}
}
