package kind

import (
	"math"

	"dyntype/pkg/box"
	"dyntype/pkg/errors"
)

// EvalArithmetic applies a binary arithmetic operator
// (+ - * / % & | ^ << >> >>>) to two boxed operands, using k's width and
// rules. Byte, Short and Char promote to Int; Number promotes to Long when
// both operands are integral and to Double otherwise.
func (k Kind) EvalArithmetic(op string, lhs, rhs any) (any, error) {
	switch k {
	case Byte, Short, Char, Int:
		a, ok := toInt(lhs)
		if !ok {
			return nil, badOperand(op, k, lhs)
		}
		b, ok := toInt(rhs)
		if !ok {
			return nil, badOperand(op, k, rhs)
		}
		r, err := intArith(op, a, b)
		if err != nil {
			if _, ok := err.(*errors.UnsupportedOperatorError); ok {
				return nil, unsupported(op, k)
			}
			return nil, err
		}
		return box.Int(r), nil
	case Long:
		a, ok := toLongTrunc(lhs)
		if !ok {
			return nil, badOperand(op, k, lhs)
		}
		b, ok := toLongTrunc(rhs)
		if !ok {
			return nil, badOperand(op, k, rhs)
		}
		r, err := longArith(op, a, b)
		if err != nil {
			return nil, err
		}
		return box.Long(r), nil
	case Float:
		a, ok := toDouble(lhs)
		if !ok {
			return nil, badOperand(op, k, lhs)
		}
		b, ok := toDouble(rhs)
		if !ok {
			return nil, badOperand(op, k, rhs)
		}
		r, err := floatArith(op, float64(float32(a)), float64(float32(b)), k)
		if err != nil {
			return nil, err
		}
		return box.Float(float32(r)), nil
	case Double:
		a, ok := toDouble(lhs)
		if !ok {
			return nil, badOperand(op, k, lhs)
		}
		b, ok := toDouble(rhs)
		if !ok {
			return nil, badOperand(op, k, rhs)
		}
		r, err := floatArith(op, a, b, k)
		if err != nil {
			return nil, err
		}
		return box.Double(r), nil
	case Number:
		lk, rk := Of(lhs), Of(rhs)
		if lk.IsIntegral() && rk.IsIntegral() {
			return Long.EvalArithmetic(op, lhs, rhs)
		}
		if lk.IsNumeric() && rk.IsNumeric() {
			return Double.EvalArithmetic(op, lhs, rhs)
		}
		if !lk.IsNumeric() {
			return nil, badOperand(op, k, lhs)
		}
		return nil, badOperand(op, k, rhs)
	case Bool:
		a, ok := toBool(lhs)
		if !ok {
			return nil, badOperand(op, k, lhs)
		}
		b, ok := toBool(rhs)
		if !ok {
			return nil, badOperand(op, k, rhs)
		}
		switch op {
		case "&":
			return a && b, nil
		case "|":
			return a || b, nil
		case "^":
			return a != b, nil
		}
		return nil, unsupported(op, k)
	case String:
		if op != "+" {
			return nil, unsupported(op, k)
		}
		return ToString(lhs) + ToString(rhs), nil
	}
	return nil, unsupported(op, k)
}

func divideByZero() error { return &errors.ArithmeticError{Msg: "/ by zero"} }

func intArith(op string, a, b int32) (int32, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, divideByZero()
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, divideByZero()
		}
		return a % b, nil
	case "&":
		return a & b, nil
	case "|":
		return a | b, nil
	case "^":
		return a ^ b, nil
	case "<<":
		return a << uint(b&0x1f), nil
	case ">>":
		return a >> uint(b&0x1f), nil
	case ">>>":
		return int32(uint32(a) >> uint(b&0x1f)), nil
	}
	return 0, unsupported(op, Int)
}

func longArith(op string, a, b int64) (int64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, divideByZero()
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, divideByZero()
		}
		return a % b, nil
	case "&":
		return a & b, nil
	case "|":
		return a | b, nil
	case "^":
		return a ^ b, nil
	case "<<":
		return a << uint(b&0x3f), nil
	case ">>":
		return a >> uint(b&0x3f), nil
	case ">>>":
		return int64(uint64(a) >> uint(b&0x3f)), nil
	}
	return 0, unsupported(op, Long)
}

// floatArith has no bitwise or shift operators. k names the kind in errors.
func floatArith(op string, a, b float64, k Kind) (float64, error) {
	switch op {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		return a / b, nil
	case "%":
		return math.Mod(a, b), nil
	}
	return 0, unsupported(op, k)
}
