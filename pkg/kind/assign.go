package kind

import "dyntype/pkg/errors"

// widens[from] lists the kinds a value of kind from converts to without a
// cast (widening primitive conversion).
var widens = [numKinds][]Kind{
	Byte:  {Short, Int, Long, Float, Double},
	Short: {Int, Long, Float, Double},
	Char:  {Int, Long, Float, Double},
	Int:   {Long, Float, Double},
	Long:  {Float, Double},
	Float: {Double},
}

func widensTo(from, to Kind) bool {
	if from == to {
		return true
	}
	if from >= numKinds {
		return false
	}
	for _, k := range widens[from] {
		if k == to {
			return true
		}
	}
	return false
}

// IsAssignableFromAssignment reports whether a value of kind from can be
// assigned to a variable of kind k. constant is the compile-time value of
// the right-hand side, or nil; an in-range integer constant narrows to
// Byte, Short or Char.
func (k Kind) IsAssignableFromAssignment(from Kind, constant any) (bool, error) {
	switch k {
	case Byte, Short, Char:
		if widensTo(from, k) {
			return true, nil
		}
		if constant != nil && (from == Byte || from == Short || from == Char || from == Int) {
			c, ok := toLong(constant)
			return ok && fits(k, c), nil
		}
		return false, nil
	case Int, Long, Float, Double:
		return widensTo(from, k), nil
	case Bool:
		return from == Bool, nil
	case String:
		return from == String, nil
	case Number:
		return from.IsNumeric(), nil
	case Object:
		return from != Void, nil
	case Void:
		return false, nil
	}
	return false, unimplemented("IsAssignableFromAssignment", k)
}

// IsAssignableFromParameter reports whether an argument of kind from binds
// to a parameter of kind k during overload resolution. Unlike assignment,
// constants never narrow.
func (k Kind) IsAssignableFromParameter(from Kind) (bool, error) {
	switch k {
	case Byte:
		return from == Byte, nil
	case Short:
		return from == Byte || from == Short, nil
	case Long:
		return from.IsIntegral(), nil
	case Float:
		// every number except a double
		return from.IsNumeric() && from != Double, nil
	case Char, Int, Double:
		return widensTo(from, k), nil
	case Bool:
		return from == Bool, nil
	}
	return false, unimplemented("IsAssignableFromParameter", k)
}

// IsAssignableFromOverride reports whether a method returning from can
// override one returning k. Primitive returns must match exactly; reference
// returns may narrow.
func (k Kind) IsAssignableFromOverride(from Kind) (bool, error) {
	switch {
	case k.IsPrimitive() || k == Void:
		return from == k, nil
	case k == Object:
		return !from.IsPrimitive() && from != Void, nil
	case k == Number || k == String:
		return from == k, nil
	}
	return false, unimplemented("IsAssignableFromOverride", k)
}

func fits(k Kind, c int64) bool {
	switch k {
	case Byte:
		return c >= -128 && c <= 127
	case Short:
		return c >= -32768 && c <= 32767
	case Char:
		return c >= 0 && c <= 0xffff
	}
	return false
}

func unimplemented(op string, k Kind) error {
	return &errors.UnsupportedOperationError{Op: op, TypeName: k.String()}
}
