package kind

import (
	"math"

	"dyntype/pkg/box"
)

// toLong unboxes any integer-family value. Floating values are not
// accepted; use toDouble for those.
func toLong(v any) (int64, bool) {
	switch x := v.(type) {
	case box.Byte:
		return int64(x), true
	case box.Short:
		return int64(x), true
	case box.Char:
		return int64(x), true
	case box.Int:
		return int64(x), true
	case box.Long:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case uint16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

// toDouble unboxes any numeric value.
func toDouble(v any) (float64, bool) {
	switch x := v.(type) {
	case box.Float:
		return float64(x), true
	case box.Double:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	if l, ok := toLong(v); ok {
		return float64(l), true
	}
	return 0, false
}

// toInt unboxes a numeric value to 32 bits, truncating floating values the
// way a cast does.
func toInt(v any) (int32, bool) {
	if l, ok := toLong(v); ok {
		return int32(l), true
	}
	if d, ok := toDouble(v); ok {
		return d2i(d), true
	}
	return 0, false
}

// toLongTrunc unboxes a numeric value to 64 bits, truncating floating values.
func toLongTrunc(v any) (int64, bool) {
	if l, ok := toLong(v); ok {
		return l, true
	}
	if d, ok := toDouble(v); ok {
		return d2l(d), true
	}
	return 0, false
}

// d2i converts with saturation; NaN becomes 0.
func d2i(d float64) int32 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt32:
		return math.MaxInt32
	case d <= math.MinInt32:
		return math.MinInt32
	}
	return int32(d)
}

// d2l converts with saturation; NaN becomes 0.
func d2l(d float64) int64 {
	switch {
	case math.IsNaN(d):
		return 0
	case d >= math.MaxInt64:
		return math.MaxInt64
	case d <= math.MinInt64:
		return math.MinInt64
	}
	return int64(d)
}

func toBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}
