package expr

import (
	"strconv"
	"strings"

	"dyntype/pkg/box"
	"dyntype/pkg/errors"
)

// ParseLiteral converts the text of a single literal into its boxed value:
//
//	42 -> box.Int       42L -> box.Long      0xff -> box.Int
//	1.5 -> box.Double   1.5f -> box.Float    'c' -> box.Char
//	"s" -> string       true/false -> bool   null -> nil
//
// A leading '-' is accepted on numeric literals so that the most negative
// int and long values can be written.
func ParseLiteral(text string) (any, error) {
	text = strings.TrimSpace(text)
	fail := func(msg string) (any, error) {
		return nil, &errors.SyntaxError{Msg: msg + ": " + text}
	}
	switch text {
	case "":
		return fail("empty literal")
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}
	switch text[0] {
	case '"':
		s, err := strconv.Unquote(text)
		if err != nil {
			return fail("bad string literal")
		}
		return s, nil
	case '\'':
		if len(text) < 3 || text[len(text)-1] != '\'' {
			return fail("bad char literal")
		}
		r, _, tail, err := strconv.UnquoteChar(text[1:len(text)-1], '\'')
		if err != nil || tail != "" || r > 0xffff {
			return fail("bad char literal")
		}
		return box.Char(r), nil
	}

	neg := strings.HasPrefix(text, "-")
	digits := strings.TrimPrefix(text, "-")
	if digits == "" {
		return fail("bad number")
	}
	last := digits[len(digits)-1]
	isHex := len(digits) > 2 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X')

	if isHex {
		long := last == 'l' || last == 'L'
		if long {
			digits = digits[:len(digits)-1]
		}
		bits := 32
		if long {
			bits = 64
		}
		u, err := strconv.ParseUint(digits[2:], 16, bits)
		if err != nil {
			return fail("hex literal out of range")
		}
		if long {
			v := int64(u)
			if neg {
				v = -v
			}
			return box.Long(v), nil
		}
		v := int32(uint32(u))
		if neg {
			v = -v
		}
		return box.Int(v), nil
	}

	switch last {
	case 'l', 'L':
		v, err := strconv.ParseInt(sign(neg)+digits[:len(digits)-1], 10, 64)
		if err != nil {
			return fail("long literal out of range")
		}
		return box.Long(v), nil
	case 'f', 'F':
		v, err := strconv.ParseFloat(sign(neg)+digits[:len(digits)-1], 32)
		if err != nil {
			return fail("bad float literal")
		}
		return box.Float(float32(v)), nil
	case 'd', 'D':
		v, err := strconv.ParseFloat(sign(neg)+digits[:len(digits)-1], 64)
		if err != nil {
			return fail("bad double literal")
		}
		return box.Double(v), nil
	}
	if strings.ContainsAny(digits, ".eE") {
		v, err := strconv.ParseFloat(sign(neg)+digits, 64)
		if err != nil {
			return fail("bad double literal")
		}
		return box.Double(v), nil
	}
	v, err := strconv.ParseInt(sign(neg)+digits, 10, 32)
	if err != nil {
		return fail("int literal out of range")
	}
	return box.Int(int32(v)), nil
}

func sign(neg bool) string {
	if neg {
		return "-"
	}
	return ""
}
