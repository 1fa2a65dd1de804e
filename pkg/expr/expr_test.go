package expr

import (
	"math"
	"testing"

	"dyntype/pkg/box"
	"dyntype/pkg/errors"
)

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize(`x1 += 'a' + "s\"q" * 0x1F >>> 1.5e3f instanceof Foo`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		tt   TokenType
		text string
	}{
		{IDENT, "x1"},
		{OPERATOR, "+="},
		{LITERAL, "'a'"},
		{OPERATOR, "+"},
		{LITERAL, `"s\"q"`},
		{OPERATOR, "*"},
		{LITERAL, "0x1F"},
		{OPERATOR, ">>>"},
		{LITERAL, "1.5e3f"},
		{OPERATOR, "instanceof"},
		{IDENT, "Foo"},
		{EOF, ""},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for i, w := range want {
		if tokens[i].Type != w.tt || tokens[i].Text != w.text {
			t.Errorf("token %d: expected %s %q, got %s %q", i, w.tt, w.text, tokens[i].Type, tokens[i].Text)
		}
	}
	if tokens[1].Pos != 3 {
		t.Errorf("expected += at offset 3, got %d", tokens[1].Pos)
	}
}

func TestTokenizeError(t *testing.T) {
	_, err := Tokenize("a # b")
	se, ok := err.(*errors.SyntaxError)
	if !ok {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if se.Pos != 2 {
		t.Errorf("expected position 2, got %d", se.Pos)
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		text string
		want any
	}{
		{"42", box.Int(42)},
		{"-2147483648", box.Int(math.MinInt32)},
		{"42L", box.Long(42)},
		{"9223372036854775807L", box.Long(math.MaxInt64)},
		{"0xff", box.Int(255)},
		{"0xFFFFFFFF", box.Int(-1)},
		{"0x7fffffffffffffffL", box.Long(math.MaxInt64)},
		{"1.5", box.Double(1.5)},
		{"1.5f", box.Float(1.5)},
		{"2d", box.Double(2)},
		{"1e3", box.Double(1000)},
		{".5", box.Double(0.5)},
		{"'c'", box.Char('c')},
		{`'\n'`, box.Char('\n')},
		{`'A'`, box.Char('A')},
		{`"a\tb"`, "a\tb"},
		{"true", true},
		{"false", false},
		{"null", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseLiteral(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestParseLiteralErrors(t *testing.T) {
	for _, text := range []string{"", "2147483648", "0x1FFFFFFFF", "'ab'", `"open`, "1.2.3"} {
		if _, err := ParseLiteral(text); err == nil {
			t.Errorf("expected error for %q", text)
		} else if errors.KindOf(err) != "Syntax" {
			t.Errorf("expected Syntax error for %q, got %v", text, err)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"a = b = 3", "(a = (b = 3))"},
		{"a += 1 << 2", "(a += (1 << 2))"},
		{"a || b && c", "(a || (b && c))"},
		{"a == b | c", "((a == b) | c)"},
		{"c ? 1 : d ? 2 : 3", "(c ? 1 : (d ? 2 : 3))"},
		{"x++ + ++y", "((x++) + (++y))"},
		{"-x * 2", "((-x) * 2)"},
		{"!a", "(!a)"},
		{"(int) 3.5", "((int) 3.5)"},
		{"(long) -x", "((long) (-x))"},
		{"(a) + b", "(a + b)"},
		{"a.b.c(1, 2)", "a.b.c(1, 2)"},
		{"f()", "f()"},
		{"new java.util.Date(1)", "new java.util.Date(1)"},
		{"p.x = 3", "(p.x = 3)"},
		{"x instanceof Foo", "(x instanceof Foo)"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := n.String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{"1 +", "(1", "3 = 4", "5++", "++5", "a b", "new (1)", "f(1,", "c ? 1"} {
		if _, err := Parse(src); err == nil {
			t.Errorf("expected error for %q", src)
		} else if errors.KindOf(err) != "Syntax" {
			t.Errorf("expected Syntax error for %q, got %v", src, err)
		}
	}
}

func TestEvalOperators(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"3 + 4", box.Int(7)},
		{`"3" + 4`, "34"},
		{`"a" + null`, "anull"},
		{"(byte) 300", box.Byte(44)},
		{"2147483647 + 1", box.Int(math.MinInt32)},
		{"-2147483648", box.Int(math.MinInt32)},
		{"7 / 2", box.Int(3)},
		{"7.0 / 2.0", box.Double(3.5)},
		{"1 << 33", box.Int(2)},
		{"-1 >>> 28", box.Int(15)},
		{"3 < 4", true},
		{"'a' == 'a'", true},
		{"true ? 1 : 2", box.Int(1)},
		{"false && 1 / 0 == 0", false},
		{"true || 1 / 0 == 0", true},
		{"!(1 > 2)", true},
		{"~0", box.Int(-1)},
		{"(int) 3.99", box.Int(3)},
		{"(char) 65", box.Char('A')},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Eval(tt.src, nil, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v (%T), got %v (%T)", tt.want, tt.want, got, got)
			}
		})
	}
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind string
	}{
		{"1.0 & 2.0", "UnsupportedOperator"},
		{"1 / 0", "Arithmetic"},
		{"1 ? 2 : 3", "UnsupportedOperator"},
		{"y + 1", "UnresolvedProperty"},
		{"p.x", "UnsupportedOperation"},
		{"f(1)", "UnresolvedMethod"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Eval(tt.src, MapEnv{"p": 1}, nil)
			if got := errors.KindOf(err); got != tt.kind {
				t.Errorf("expected %s error, got %v", tt.kind, err)
			}
		})
	}
}

func TestEvalVariables(t *testing.T) {
	env := MapEnv{"x": box.Int(5), "b": box.Byte(127), "s": "hi"}

	got, err := Eval("x++", env, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != box.Int(5) || env["x"] != box.Int(6) {
		t.Errorf("expected x++ = 5 and x = 6, got %v and %v", got, env["x"])
	}

	if got, _ = Eval("--x", env, nil); got != box.Int(5) || env["x"] != box.Int(5) {
		t.Errorf("expected --x = 5, got %v and %v", got, env["x"])
	}

	if got, _ = Eval("b += 2", env, nil); got != box.Byte(-127) || env["b"] != box.Byte(-127) {
		t.Errorf("expected b += 2 to wrap to -127, got %v", env["b"])
	}

	if _, err = Eval(`s += "!"`, env, nil); err != nil || env["s"] != "hi!" {
		t.Errorf("expected s = hi!, got %v (%v)", env["s"], err)
	}

	if got, _ = Eval(`x > 3 ? "big" : "small"`, env, nil); got != "big" {
		t.Errorf("expected big, got %v", got)
	}

	if _, err = Eval("y = x * 2", env, nil); err != nil || env["y"] != box.Int(10) {
		t.Errorf("expected y = 10, got %v (%v)", env["y"], err)
	}

	for src, want := range map[string]bool{
		"x instanceof int":    true,
		"x instanceof long":   false,
		"s instanceof String": true,
		"x instanceof Number": true,
	} {
		got, err := Eval(src, env, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", src, err)
		}
		if got != want {
			t.Errorf("%s: expected %v, got %v", src, want, got)
		}
	}
}

type call struct {
	op     string
	target any
	name   string
	args   []any
}

// recordingHost returns canned values and records each access.
type recordingHost struct {
	calls []call
	props map[string]any
}

func (h *recordingHost) GetProperty(target, selector any) (any, error) {
	name := selector.(string)
	h.calls = append(h.calls, call{op: "get", target: target, name: name})
	return h.props[name], nil
}

func (h *recordingHost) SetProperty(target, selector, value any) error {
	name := selector.(string)
	h.calls = append(h.calls, call{op: "set", target: target, name: name, args: []any{value}})
	h.props[name] = value
	return nil
}

func (h *recordingHost) Invoke(receiver any, name string, args ...any) (any, error) {
	h.calls = append(h.calls, call{op: "invoke", target: receiver, name: name, args: args})
	return box.Int(len(args)), nil
}

func (h *recordingHost) CreateInstance(class any, signature string, args ...any) (any, error) {
	h.calls = append(h.calls, call{op: "new", target: class, name: signature, args: args})
	return "instance", nil
}

func TestEvalHost(t *testing.T) {
	host := &recordingHost{props: map[string]any{"x": box.Int(2)}}
	env := MapEnv{"p": "point", "this": "self"}

	steps := []struct {
		src    string
		want   any
		op     string
		target any
		name   string
	}{
		{"p.x + 1", box.Int(3), "get", "point", "x"},
		{"Math.max(1, 2)", box.Int(2), "invoke", "Math", "max"},
		{"size()", box.Int(0), "invoke", "self", "size"},
		{"new Point(1, \"a\")", "instance", "new", "Point", "(ILjava/lang/String;)"},
		{"p.x = 9", box.Int(9), "set", "point", "x"},
	}
	for _, s := range steps {
		host.calls = nil
		got, err := Eval(s.src, env, host)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", s.src, err)
		}
		if got != s.want {
			t.Errorf("%s: expected %v, got %v", s.src, s.want, got)
		}
		if len(host.calls) == 0 {
			t.Fatalf("%s: expected a host call", s.src)
		}
		c := host.calls[len(host.calls)-1]
		if c.op != s.op || c.target != s.target || c.name != s.name {
			t.Errorf("%s: expected %s %v.%s, got %s %v.%s", s.src, s.op, s.target, s.name, c.op, c.target, c.name)
		}
	}

	host.calls = nil
	if _, err := Eval("p.x++", env, host); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(host.calls) != 2 || host.calls[0].op != "get" || host.calls[1].op != "set" {
		t.Errorf("expected get then set, got %v", host.calls)
	}
	if host.props["x"] != box.Int(10) {
		t.Errorf("expected x = 10, got %v", host.props["x"])
	}
}
