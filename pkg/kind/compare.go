package kind

import "reflect"

// InstanceChecker is implemented by right-hand operands of instanceof.
type InstanceChecker interface {
	IsInstance(v any) bool
}

// Equaler lets reference values define == for the Object kind.
type Equaler interface {
	Equals(other any) bool
}

// IsInstance reports whether v's kind is k. nil is an instance of nothing.
func (k Kind) IsInstance(v any) bool {
	if v == nil {
		return false
	}
	if k == Object {
		return true
	}
	if k == Number {
		return Of(v).IsNumeric()
	}
	return Of(v) == k
}

// EvalConditional evaluates a comparison or logical operator
// (== != < <= > >= && || instanceof) and returns the boolean result.
func (k Kind) EvalConditional(op string, lhs, rhs any) (bool, error) {
	if op == "instanceof" {
		c, ok := rhs.(InstanceChecker)
		if !ok {
			return false, badOperand(op, k, rhs)
		}
		return c.IsInstance(lhs), nil
	}
	switch k {
	case Byte, Short, Char, Int, Long:
		a, ok := toLongTrunc(lhs)
		if !ok {
			return false, badOperand(op, k, lhs)
		}
		b, ok := toLongTrunc(rhs)
		if !ok {
			return false, badOperand(op, k, rhs)
		}
		return compareOrdered(op, a, b, k)
	case Float, Double:
		a, ok := toDouble(lhs)
		if !ok {
			return false, badOperand(op, k, lhs)
		}
		b, ok := toDouble(rhs)
		if !ok {
			return false, badOperand(op, k, rhs)
		}
		if k == Float {
			a, b = float64(float32(a)), float64(float32(b))
		}
		return compareOrdered(op, a, b, k)
	case Number:
		lk, rk := Of(lhs), Of(rhs)
		if lk.IsIntegral() && rk.IsIntegral() {
			return Long.EvalConditional(op, lhs, rhs)
		}
		if lk.IsNumeric() && rk.IsNumeric() {
			return Double.EvalConditional(op, lhs, rhs)
		}
		if !lk.IsNumeric() {
			return false, badOperand(op, k, lhs)
		}
		return false, badOperand(op, k, rhs)
	case Bool:
		a, ok := toBool(lhs)
		if !ok {
			return false, badOperand(op, k, lhs)
		}
		b, ok := toBool(rhs)
		if !ok {
			return false, badOperand(op, k, rhs)
		}
		switch op {
		case "==":
			return a == b, nil
		case "!=":
			return a != b, nil
		case "&&":
			return a && b, nil
		case "||":
			return a || b, nil
		}
		return false, unsupported(op, k)
	case String, Object:
		switch op {
		case "==":
			return equalObjects(lhs, rhs), nil
		case "!=":
			return !equalObjects(lhs, rhs), nil
		}
		return false, unsupported(op, k)
	}
	return false, unsupported(op, k)
}

// EvalPreConditional is the short-circuit half of && and ||. It reports
// decided=true when lhs alone determines the result, so the caller can skip
// evaluating the right operand.
func (k Kind) EvalPreConditional(op string, lhs any) (result bool, decided bool, err error) {
	if k != Bool {
		return false, false, unsupported(op, k)
	}
	b, ok := toBool(lhs)
	if !ok {
		return false, false, badOperand(op, k, lhs)
	}
	switch op {
	case "&&":
		if !b {
			return false, true, nil
		}
		return false, false, nil
	case "||":
		if b {
			return true, true, nil
		}
		return false, false, nil
	}
	return false, false, nil
}

type ordered interface {
	~int64 | ~float64
}

func compareOrdered[T ordered](op string, a, b T, k Kind) (bool, error) {
	switch op {
	case "==":
		return a == b, nil
	case "!=":
		return a != b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	}
	return false, unsupported(op, k)
}

// equalObjects compares two references. Values that cannot be compared
// with == (slices, maps, funcs) are only equal through Equaler.
func equalObjects(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if e, ok := a.(Equaler); ok {
		return e.Equals(b)
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
