package kind

import (
	"math"
	"testing"

	"dyntype/pkg/box"
	"dyntype/pkg/errors"
)

func expectErrorKind(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := errors.KindOf(err); got != want {
		t.Errorf("expected %s error, got %s (%v)", want, got, err)
	}
}

func TestOf(t *testing.T) {
	tests := []struct {
		value any
		want  Kind
	}{
		{true, Bool},
		{box.Byte(1), Byte},
		{int8(1), Byte},
		{box.Short(1), Short},
		{box.Char('a'), Char},
		{box.Int(1), Int},
		{1, Int},
		{box.Long(1), Long},
		{int64(1), Long},
		{box.Float(1), Float},
		{box.Double(1), Double},
		{1.5, Double},
		{"s", String},
		{nil, Object},
		{struct{}{}, Object},
		{[]int{1}, Object},
	}
	for _, tt := range tests {
		if got := Of(tt.value); got != tt.want {
			t.Errorf("Of(%#v): expected %s, got %s", tt.value, tt.want, got)
		}
	}
}

func TestForName(t *testing.T) {
	for name, want := range map[string]Kind{
		"int":               Int,
		"java.lang.Integer": Int,
		"Integer":           Int,
		"I":                 Int,
		"J":                 Long,
		"Character":         Char,
		"boolean":           Bool,
		"java/lang/String":  String,
		"void":              Void,
	} {
		got, ok := ForName(name)
		if !ok || got != want {
			t.Errorf("ForName(%q): expected %s, got %s (ok=%v)", name, want, got, ok)
		}
	}
	if _, ok := ForName("nope"); ok {
		t.Errorf("expected ForName(\"nope\") to fail")
	}
}

func TestIntRoundTrip(t *testing.T) {
	sum, err := Int.EvalArithmetic("+", 2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := Int.EvalCast(sum)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != box.Int(5) {
		t.Errorf("expected 5, got %#v", v)
	}
	eq, err := Int.EvalConditional("==", 5, 5)
	if err != nil || !eq {
		t.Errorf("expected 5 == 5, got %v (err=%v)", eq, err)
	}
}

func TestIntegerArithmetic(t *testing.T) {
	tests := []struct {
		k        Kind
		op       string
		lhs, rhs any
		want     any
	}{
		{Int, "+", box.Int(math.MaxInt32), box.Int(1), box.Int(math.MinInt32)},
		{Int, "-", box.Int(1), box.Int(3), box.Int(-2)},
		{Int, "*", box.Int(1 << 20), box.Int(1 << 12), box.Int(0)},
		{Int, "/", box.Int(-7), box.Int(2), box.Int(-3)},
		{Int, "%", box.Int(-7), box.Int(2), box.Int(-1)},
		{Int, "/", box.Int(math.MinInt32), box.Int(-1), box.Int(math.MinInt32)},
		{Int, "&", box.Int(6), box.Int(3), box.Int(2)},
		{Int, "|", box.Int(6), box.Int(3), box.Int(7)},
		{Int, "^", box.Int(6), box.Int(3), box.Int(5)},
		{Int, "<<", box.Int(1), box.Int(33), box.Int(2)},
		{Int, ">>", box.Int(-8), box.Int(1), box.Int(-4)},
		{Int, ">>>", box.Int(-1), box.Int(28), box.Int(15)},
		{Long, "+", box.Long(math.MaxInt64), box.Long(1), box.Long(math.MinInt64)},
		{Long, "<<", box.Long(1), box.Long(65), box.Long(2)},
		{Long, ">>>", box.Long(-1), box.Long(60), box.Long(15)},
		{Long, "*", box.Long(1 << 40), box.Int(2), box.Long(1 << 41)},
		{Byte, "+", box.Byte(100), box.Byte(100), box.Int(200)},
		{Short, "*", box.Short(300), box.Short(300), box.Int(90000)},
		{Char, "+", box.Char('a'), box.Int(1), box.Int('b')},
	}
	for _, tt := range tests {
		got, err := tt.k.EvalArithmetic(tt.op, tt.lhs, tt.rhs)
		if err != nil {
			t.Errorf("%s %v %s %v: unexpected error: %v", tt.k, tt.lhs, tt.op, tt.rhs, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s %v %s %v: expected %#v, got %#v", tt.k, tt.lhs, tt.op, tt.rhs, tt.want, got)
		}
	}
}

func TestDivideByZero(t *testing.T) {
	_, err := Int.EvalArithmetic("/", box.Int(1), box.Int(0))
	expectErrorKind(t, err, "Arithmetic")
	_, err = Long.EvalArithmetic("%", box.Long(1), box.Long(0))
	expectErrorKind(t, err, "Arithmetic")

	v, err := Double.EvalArithmetic("/", box.Double(1), box.Double(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(float64(v.(box.Double)), 1) {
		t.Errorf("expected +Inf, got %v", v)
	}
}

func TestFloatingArithmetic(t *testing.T) {
	v, err := Double.EvalArithmetic("%", box.Double(7.5), box.Double(2))
	if err != nil || v != box.Double(1.5) {
		t.Errorf("expected 1.5, got %#v (err=%v)", v, err)
	}
	v, err = Float.EvalArithmetic("*", box.Float(1.5), box.Int(2))
	if err != nil || v != box.Float(3) {
		t.Errorf("expected 3, got %#v (err=%v)", v, err)
	}
	for _, op := range []string{"&", "|", "^", "<<", ">>", ">>>"} {
		_, err := Double.EvalArithmetic(op, box.Double(1), box.Double(2))
		expectErrorKind(t, err, "UnsupportedOperator")
		_, err = Float.EvalArithmetic(op, box.Float(1), box.Float(2))
		expectErrorKind(t, err, "UnsupportedOperator")
	}
}

func TestNumberPromotion(t *testing.T) {
	v, err := Number.EvalArithmetic("+", box.Int(2), box.Long(3))
	if err != nil || v != box.Long(5) {
		t.Errorf("expected Long 5, got %#v (err=%v)", v, err)
	}
	v, err = Number.EvalArithmetic("+", box.Int(1), box.Double(0.5))
	if err != nil || v != box.Double(1.5) {
		t.Errorf("expected Double 1.5, got %#v (err=%v)", v, err)
	}
	_, err = Number.EvalArithmetic("&", box.Int(1), box.Float(1))
	expectErrorKind(t, err, "UnsupportedOperator")
	lt, err := Number.EvalConditional("<", box.Byte(1), box.Double(1.5))
	if err != nil || !lt {
		t.Errorf("expected 1 < 1.5, got %v (err=%v)", lt, err)
	}
}

func TestStringConcatenation(t *testing.T) {
	tests := []struct {
		lhs, rhs any
		want     string
	}{
		{"3", 4, "34"},
		{"3", box.Int(4), "34"},
		{"a", nil, "anull"},
		{nil, "b", "nullb"},
		{"x", box.Double(1), "x1.0"},
		{"x", box.Char('y'), "xy"},
		{"x", true, "xtrue"},
	}
	for _, tt := range tests {
		got, err := String.EvalArithmetic("+", tt.lhs, tt.rhs)
		if err != nil {
			t.Errorf("%v + %v: unexpected error: %v", tt.lhs, tt.rhs, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%v + %v: expected %q, got %q", tt.lhs, tt.rhs, tt.want, got)
		}
	}
	_, err := String.EvalArithmetic("-", "a", "b")
	expectErrorKind(t, err, "UnsupportedOperator")
}

func TestObjectAndVoidRejectArithmetic(t *testing.T) {
	for _, k := range []Kind{Object, Void} {
		_, err := k.EvalArithmetic("+", 1, 2)
		expectErrorKind(t, err, "UnsupportedOperator")
	}
}

func TestBooleanOperators(t *testing.T) {
	v, err := Bool.EvalArithmetic("^", true, true)
	if err != nil || v != false {
		t.Errorf("expected true ^ true == false, got %v (err=%v)", v, err)
	}
	ok, err := Bool.EvalConditional("||", false, true)
	if err != nil || !ok {
		t.Errorf("expected false || true, got %v (err=%v)", ok, err)
	}
	_, err = Bool.EvalConditional("<", false, true)
	expectErrorKind(t, err, "UnsupportedOperator")
}

func TestPreConditional(t *testing.T) {
	tests := []struct {
		op          string
		lhs         bool
		wantResult  bool
		wantDecided bool
	}{
		{"&&", false, false, true},
		{"&&", true, false, false},
		{"||", true, true, true},
		{"||", false, false, false},
	}
	for _, tt := range tests {
		result, decided, err := Bool.EvalPreConditional(tt.op, tt.lhs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != tt.wantResult || decided != tt.wantDecided {
			t.Errorf("%v %s _: expected (%v, %v), got (%v, %v)",
				tt.lhs, tt.op, tt.wantResult, tt.wantDecided, result, decided)
		}
	}
	if _, _, err := Int.EvalPreConditional("&&", 1); err == nil {
		t.Errorf("expected error for non-boolean kind")
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		k        Kind
		op       string
		lhs, rhs any
		want     bool
	}{
		{Int, "<", box.Int(1), box.Int(2), true},
		{Int, ">=", box.Int(1), box.Int(2), false},
		{Long, "!=", box.Long(1), box.Int(1), false},
		{Double, "==", box.Double(math.NaN()), box.Double(math.NaN()), false},
		{Char, ">", box.Char('b'), box.Char('a'), true},
		{String, "==", "a", "a", true},
		{String, "!=", "a", "b", true},
		{Object, "==", nil, nil, true},
		{Object, "==", []int{1}, []int{1}, false},
		{Object, "instanceof", box.Int(1), Int, true},
		{Object, "instanceof", "s", Number, false},
		{Object, "instanceof", nil, Object, false},
	}
	for _, tt := range tests {
		got, err := tt.k.EvalConditional(tt.op, tt.lhs, tt.rhs)
		if err != nil {
			t.Errorf("%s %v %s %v: unexpected error: %v", tt.k, tt.lhs, tt.op, tt.rhs, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s %v %s %v: expected %v, got %v", tt.k, tt.lhs, tt.op, tt.rhs, tt.want, got)
		}
	}
	_, err := String.EvalConditional("<", "a", "b")
	expectErrorKind(t, err, "UnsupportedOperator")
}

type point struct{ x, y int }

func (p point) Equals(other any) bool {
	o, ok := other.(point)
	return ok && o.x == p.x
}

func TestEqualerIsHonoured(t *testing.T) {
	eq, err := Object.EvalConditional("==", point{1, 2}, point{1, 3})
	if err != nil || !eq {
		t.Errorf("expected Equals to decide ==, got %v (err=%v)", eq, err)
	}
}

func TestUnary(t *testing.T) {
	result, updated, err := Int.EvalUnary(PostIncrement, box.Int(5))
	if err != nil || result != box.Int(5) || updated != box.Int(6) {
		t.Errorf("x++: expected (5, 6), got (%v, %v) err=%v", result, updated, err)
	}
	result, updated, err = Byte.EvalUnary(PreIncrement, box.Byte(127))
	if err != nil || result != box.Byte(-128) || updated != box.Byte(-128) {
		t.Errorf("++x on byte: expected wrap to -128, got (%v, %v) err=%v", result, updated, err)
	}
	result, _, err = Short.EvalUnary(Minus, box.Short(3))
	if err != nil || result != box.Int(-3) {
		t.Errorf("-x on short: expected Int -3, got %#v err=%v", result, err)
	}
	result, _, err = Long.EvalUnary(BitNot, box.Long(0))
	if err != nil || result != box.Long(-1) {
		t.Errorf("~x on long: expected -1, got %#v err=%v", result, err)
	}
	result, _, err = Bool.EvalUnary(Not, false)
	if err != nil || result != true {
		t.Errorf("!false: expected true, got %v err=%v", result, err)
	}
	result, updated, err = Double.EvalUnary(PostDecrement, box.Double(1.5))
	if err != nil || result != box.Double(1.5) || updated != box.Double(0.5) {
		t.Errorf("x-- on double: expected (1.5, 0.5), got (%v, %v) err=%v", result, updated, err)
	}
	_, _, err = Double.EvalUnary(BitNot, box.Double(1))
	expectErrorKind(t, err, "UnsupportedOperator")
	_, _, err = Int.EvalUnary(Not, box.Int(1))
	expectErrorKind(t, err, "UnsupportedOperator")
}

func TestParseUnaryOp(t *testing.T) {
	tests := []struct {
		token   string
		postfix bool
		want    UnaryOp
	}{
		{"++", false, PreIncrement},
		{"++", true, PostIncrement},
		{"--", true, PostDecrement},
		{"x++", false, PostIncrement},
		{"--x", true, PreDecrement},
		{"~", false, BitNot},
	}
	for _, tt := range tests {
		got, ok := ParseUnaryOp(tt.token, tt.postfix)
		if !ok || got != tt.want {
			t.Errorf("ParseUnaryOp(%q, %v): expected %s, got %s (ok=%v)", tt.token, tt.postfix, tt.want, got, ok)
		}
	}
	if _, ok := ParseUnaryOp("**", false); ok {
		t.Errorf("expected unknown token to fail")
	}
}

func TestCast(t *testing.T) {
	tests := []struct {
		k     Kind
		value any
		want  any
	}{
		{Byte, box.Int(300), box.Byte(44)},
		{Short, box.Int(70000), box.Short(4464)},
		{Char, box.Int(65), box.Char('A')},
		{Int, box.Double(math.NaN()), box.Int(0)},
		{Int, box.Double(1e20), box.Int(math.MaxInt32)},
		{Int, box.Double(-2.9), box.Int(-2)},
		{Int, box.Long(1<<32 + 7), box.Int(7)},
		{Long, box.Float(-1e30), box.Long(math.MinInt64)},
		{Double, box.Int(3), box.Double(3)},
		{Float, box.Double(0.5), box.Float(0.5)},
		{Byte, box.Double(200.7), box.Byte(-56)},
		{Bool, true, true},
		{String, nil, nil},
		{Object, "x", "x"},
	}
	for _, tt := range tests {
		got, err := tt.k.EvalCast(tt.value)
		if err != nil {
			t.Errorf("(%s) %v: unexpected error: %v", tt.k, tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("(%s) %v: expected %#v, got %#v", tt.k, tt.value, tt.want, got)
		}
	}
	_, err := Int.EvalCast("12")
	expectErrorKind(t, err, "UnsupportedOperation")
}

func TestDefaultValue(t *testing.T) {
	tests := []struct {
		k    Kind
		want any
	}{
		{Bool, false},
		{Byte, box.Byte(0)},
		{Char, box.Char(0)},
		{Int, box.Int(0)},
		{Long, box.Long(0)},
		{Float, box.Float(0)},
		{Double, box.Double(0)},
		{String, nil},
		{Object, nil},
		{Void, nil},
	}
	for _, tt := range tests {
		if got := tt.k.DefaultValue(); got != tt.want {
			t.Errorf("%s.DefaultValue(): expected %#v, got %#v", tt.k, tt.want, got)
		}
	}
}

func TestAssignability(t *testing.T) {
	check := func(name string, got bool, err error, want bool) {
		t.Helper()
		if err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
			return
		}
		if got != want {
			t.Errorf("%s: expected %v, got %v", name, want, got)
		}
	}
	ok, err := Float.IsAssignableFromParameter(Double)
	check("float <- double param", ok, err, false)
	ok, err = Float.IsAssignableFromParameter(Long)
	check("float <- long param", ok, err, true)
	ok, err = Int.IsAssignableFromParameter(Char)
	check("int <- char param", ok, err, true)
	ok, err = Int.IsAssignableFromParameter(Long)
	check("int <- long param", ok, err, false)
	ok, err = Byte.IsAssignableFromParameter(Int)
	check("byte <- int param", ok, err, false)
	ok, err = Short.IsAssignableFromParameter(Byte)
	check("short <- byte param", ok, err, true)
	ok, err = Long.IsAssignableFromParameter(Char)
	check("long <- char param", ok, err, true)

	ok, err = Long.IsAssignableFromAssignment(Float, nil)
	check("long <- float", ok, err, false)
	ok, err = Int.IsAssignableFromAssignment(Char, nil)
	check("int <- char", ok, err, true)
	ok, err = Int.IsAssignableFromAssignment(Double, nil)
	check("int <- double", ok, err, false)
	ok, err = Byte.IsAssignableFromAssignment(Int, box.Int(100))
	check("byte <- int constant 100", ok, err, true)
	ok, err = Byte.IsAssignableFromAssignment(Int, box.Int(300))
	check("byte <- int constant 300", ok, err, false)
	ok, err = Char.IsAssignableFromAssignment(Int, nil)
	check("char <- int", ok, err, false)
	ok, err = Object.IsAssignableFromAssignment(Int, nil)
	check("Object <- int", ok, err, true)

	ok, err = Int.IsAssignableFromOverride(Int)
	check("int override int", ok, err, true)
	ok, err = Int.IsAssignableFromOverride(Long)
	check("int override long", ok, err, false)
	ok, err = Object.IsAssignableFromOverride(String)
	check("Object override String", ok, err, true)

	_, err = String.IsAssignableFromParameter(String)
	expectErrorKind(t, err, "UnsupportedOperation")
	_, err = Object.IsAssignableFromParameter(Int)
	expectErrorKind(t, err, "UnsupportedOperation")
}

func TestBinary(t *testing.T) {
	tests := []struct {
		op       string
		lhs, rhs any
		want     any
	}{
		{"+", box.Int(1), "a", "1a"},
		{"+", box.Char('a'), "b", "ab"},
		{"+", box.Int(1), box.Long(2), box.Long(3)},
		{"*", box.Int(2), box.Int(3), box.Int(6)},
		{"<", box.Int(1), box.Double(1.5), true},
		{"==", "a", "a", true},
		{"==", nil, box.Int(1), false},
	}
	for _, tt := range tests {
		got, err := Binary(tt.op, tt.lhs, tt.rhs)
		if err != nil {
			t.Errorf("%v %s %v: unexpected error: %v", tt.lhs, tt.op, tt.rhs, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%v %s %v: expected %#v, got %#v", tt.lhs, tt.op, tt.rhs, tt.want, got)
		}
	}
}

func TestToString(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, "null"},
		{box.Double(1), "1.0"},
		{box.Double(-2.5), "-2.5"},
		{box.Double(1e10), "1.0E10"},
		{box.Double(1.5e-5), "1.5E-5"},
		{box.Double(math.Inf(-1)), "-Infinity"},
		{box.Float(0.1), "0.1"},
		{box.Long(-9), "-9"},
		{box.Char('z'), "z"},
		{false, "false"},
	}
	for _, tt := range tests {
		if got := ToString(tt.value); got != tt.want {
			t.Errorf("ToString(%#v): expected %q, got %q", tt.value, tt.want, got)
		}
	}
}
