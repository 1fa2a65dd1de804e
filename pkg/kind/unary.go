package kind

import (
	"fmt"

	"dyntype/pkg/box"
)

// UnaryOp is a prefix or postfix unary operator.
type UnaryOp uint8

const (
	Plus UnaryOp = iota
	Minus
	PreIncrement
	PreDecrement
	PostIncrement
	PostDecrement
	Not
	BitNot
)

func (op UnaryOp) String() string {
	switch op {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case PreIncrement:
		return "++x"
	case PreDecrement:
		return "--x"
	case PostIncrement:
		return "x++"
	case PostDecrement:
		return "x--"
	case Not:
		return "!"
	case BitNot:
		return "~"
	}
	return fmt.Sprintf("UnaryOp(%d)", uint8(op))
}

// IsPostfix reports whether the expression value is the operand's value
// before the update.
func (op UnaryOp) IsPostfix() bool { return op == PostIncrement || op == PostDecrement }

// ParseUnaryOp maps an operator token to a UnaryOp. Tokens that spell out
// the operand position ("x++", "++x", ...) ignore postfix.
func ParseUnaryOp(token string, postfix bool) (UnaryOp, bool) {
	switch token {
	case "+":
		return Plus, true
	case "-":
		return Minus, true
	case "!":
		return Not, true
	case "~":
		return BitNot, true
	case "++":
		if postfix {
			return PostIncrement, true
		}
		return PreIncrement, true
	case "--":
		if postfix {
			return PostDecrement, true
		}
		return PreDecrement, true
	case "x++":
		return PostIncrement, true
	case "x--":
		return PostDecrement, true
	case "++x":
		return PreIncrement, true
	case "--x":
		return PreDecrement, true
	}
	return 0, false
}

// EvalUnary applies op to v. result is the value of the expression; for
// increment and decrement updated holds the value to store back into the
// operand (nil for the other operators). Increment and decrement keep the
// operand's width; - ~ and + promote Byte, Short and Char to Int.
func (k Kind) EvalUnary(op UnaryOp, v any) (result any, updated any, err error) {
	switch op {
	case PreIncrement, PreDecrement, PostIncrement, PostDecrement:
		delta := int64(1)
		if op == PreDecrement || op == PostDecrement {
			delta = -1
		}
		next, err := k.step(v, delta, op)
		if err != nil {
			return nil, nil, err
		}
		if op.IsPostfix() {
			return v, next, nil
		}
		return next, next, nil
	case Not:
		if k != Bool {
			return nil, nil, unsupported(op.String(), k)
		}
		b, ok := toBool(v)
		if !ok {
			return nil, nil, badOperand(op.String(), k, v)
		}
		return !b, nil, nil
	case Plus, Minus, BitNot:
		return k.evalSign(op, v)
	}
	return nil, nil, unsupported(op.String(), k)
}

func (k Kind) evalSign(op UnaryOp, v any) (any, any, error) {
	switch k {
	case Byte, Short, Char, Int:
		i, ok := toInt(v)
		if !ok {
			return nil, nil, badOperand(op.String(), k, v)
		}
		switch op {
		case Minus:
			i = -i
		case BitNot:
			i = ^i
		}
		return box.Int(i), nil, nil
	case Long:
		l, ok := toLongTrunc(v)
		if !ok {
			return nil, nil, badOperand(op.String(), k, v)
		}
		switch op {
		case Minus:
			l = -l
		case BitNot:
			l = ^l
		}
		return box.Long(l), nil, nil
	case Float, Double:
		if op == BitNot {
			return nil, nil, unsupported(op.String(), k)
		}
		d, ok := toDouble(v)
		if !ok {
			return nil, nil, badOperand(op.String(), k, v)
		}
		if op == Minus {
			d = -d
		}
		if k == Float {
			return box.Float(float32(d)), nil, nil
		}
		return box.Double(d), nil, nil
	case Number:
		vk := Of(v)
		if !vk.IsNumeric() || vk == Number {
			return nil, nil, badOperand(op.String(), k, v)
		}
		return vk.evalSign(op, v)
	}
	return nil, nil, unsupported(op.String(), k)
}

func (k Kind) step(v any, delta int64, op UnaryOp) (any, error) {
	switch k {
	case Byte, Short, Char, Int, Long:
		l, ok := toLongTrunc(v)
		if !ok {
			return nil, badOperand(op.String(), k, v)
		}
		return k.EvalCast(box.Long(l + delta))
	case Float, Double:
		d, ok := toDouble(v)
		if !ok {
			return nil, badOperand(op.String(), k, v)
		}
		return k.EvalCast(box.Double(d + float64(delta)))
	case Number:
		vk := Of(v)
		if !vk.IsNumeric() || vk == Number {
			return nil, badOperand(op.String(), k, v)
		}
		return vk.step(v, delta, op)
	}
	return nil, unsupported(op.String(), k)
}
