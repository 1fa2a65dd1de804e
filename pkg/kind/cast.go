package kind

import (
	"dyntype/pkg/box"
	"dyntype/pkg/errors"
)

// EvalCast converts v to k's boxed representation. Integer narrowing keeps
// the low-order bits; floating to integer conversion truncates toward zero
// and saturates, with NaN becoming 0.
func (k Kind) EvalCast(v any) (any, error) {
	switch k {
	case Byte, Short, Char, Int:
		i, ok := toInt(v)
		if !ok {
			return nil, badCast(k, v)
		}
		switch k {
		case Byte:
			return box.Byte(int8(i)), nil
		case Short:
			return box.Short(int16(i)), nil
		case Char:
			return box.Char(uint16(i)), nil
		}
		return box.Int(i), nil
	case Long:
		l, ok := toLongTrunc(v)
		if !ok {
			return nil, badCast(k, v)
		}
		return box.Long(l), nil
	case Float:
		d, ok := toDouble(v)
		if !ok {
			return nil, badCast(k, v)
		}
		return box.Float(float32(d)), nil
	case Double:
		d, ok := toDouble(v)
		if !ok {
			return nil, badCast(k, v)
		}
		return box.Double(d), nil
	case Bool:
		if b, ok := toBool(v); ok {
			return b, nil
		}
		return nil, badCast(k, v)
	case String:
		if v == nil {
			return nil, nil
		}
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, badCast(k, v)
	case Number:
		if v == nil {
			return nil, nil
		}
		if Of(v).IsNumeric() {
			return v, nil
		}
		return nil, badCast(k, v)
	case Object:
		return v, nil
	}
	return nil, badCast(k, v)
}

func badCast(k Kind, v any) error {
	return &errors.UnsupportedOperationError{
		Op:  "cast",
		Msg: "cannot cast " + Of(v).String() + " to " + k.String(),
	}
}
