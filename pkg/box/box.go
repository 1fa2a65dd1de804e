// Package box defines the boxed runtime representations of the primitive
// value kinds. Each Go type maps to exactly one kind.
//
//	Byte   -> int8
//	Short  -> int16
//	Char   -> uint16 (UTF-16 code unit)
//	Int    -> int32
//	Long   -> int64
//	Float  -> float32
//	Double -> float64
//
// Booleans and strings use the native bool and string types; nil is the
// null reference.
package box

import (
	"math"
	"strconv"
	"strings"
)

type (
	Byte   int8
	Short  int16
	Char   uint16
	Int    int32
	Long   int64
	Float  float32
	Double float64
)

func (b Byte) String() string  { return strconv.FormatInt(int64(b), 10) }
func (s Short) String() string { return strconv.FormatInt(int64(s), 10) }
func (c Char) String() string  { return string(rune(c)) }
func (i Int) String() string   { return strconv.FormatInt(int64(i), 10) }
func (l Long) String() string  { return strconv.FormatInt(int64(l), 10) }

func (f Float) String() string  { return FormatFloat(float64(f), 32) }
func (d Double) String() string { return FormatFloat(float64(d), 64) }

// FormatFloat renders f the way Float.toString and Double.toString do:
// integral values keep a trailing ".0", magnitudes outside [1e-3, 1e7) use
// "d.dddE[-]n" notation.
func FormatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	abs := math.Abs(f)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(f, 'f', -1, bitSize)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}
		return s
	}
	s := strconv.FormatFloat(f, 'E', -1, bitSize)
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.ContainsRune(mant, '.') {
		mant += ".0"
	}
	neg := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(exp, "+-0")
	if exp == "" {
		exp = "0"
	}
	if neg {
		exp = "-" + exp
	}
	return mant + "E" + exp
}
