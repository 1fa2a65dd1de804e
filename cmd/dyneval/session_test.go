package main

import (
	"bytes"
	"strings"
	"testing"

	"dyntype/pkg/schema"
	"dyntype/pkg/typeutil"
)

const counterSchema = `
[[type]]
name = "app.Counter"
dynamic = true

  [[type.property]]
  name = "count"
  slot = 0
  field = true

  [[type.method]]
  slot = 0
  params = "int"
  constructor = true
`

func newTestSession(t *testing.T) (*session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	rt, err := typeutil.New(typeutil.Config{StrictLookups: true})
	if err != nil {
		t.Fatal(err)
	}
	s, err := schema.Load(strings.NewReader(counterSchema))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Build(rt); err != nil {
		t.Fatal(err)
	}
	var out, errw bytes.Buffer
	return newSession(rt, &out, &errw), &out, &errw
}

func TestSessionEval(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"3 + 4", "7"},
		{`"3" + 4`, "34"},
		{"(byte) 300", "44"},
		{"1 < 2 ? \"yes\" : \"no\"", "yes"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			s, out, errw := newTestSession(t)
			if err := s.eval(tt.src); err != nil {
				t.Fatalf("eval: %v (%s)", err, errw.String())
			}
			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSessionEvalError(t *testing.T) {
	s, _, errw := newTestSession(t)
	if err := s.eval("1.0 & 2.0"); err == nil {
		t.Fatal("expected an error")
	}
	if !strings.HasPrefix(errw.String(), "UnsupportedOperator Error:") {
		t.Errorf("expected an UnsupportedOperator line, got %q", errw.String())
	}
}

func TestSessionKeepsVariables(t *testing.T) {
	s, out, errw := newTestSession(t)
	n, err := s.run(strings.NewReader(`
# counter
c = new app.Counter(2)
c.count += 3
c.count
missing.value
`))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 failed line, got %d (%s)", n, errw.String())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if got := lines[len(lines)-1]; got != "5" {
		t.Errorf("expected c.count = 5, got %s", got)
	}
}

func TestSessionCommands(t *testing.T) {
	s, out, errw := newTestSession(t)
	if s.command(":types") {
		t.Fatal(":types should not quit")
	}
	if !strings.Contains(out.String(), "app.Counter") {
		t.Errorf("expected app.Counter in type list, got %q", out.String())
	}

	out.Reset()
	s.command(":layout app.Counter")
	if !strings.Contains(out.String(), "type app.Counter extends -") {
		t.Errorf("expected layout, got %q", out.String())
	}

	s.command(":layout nope")
	if !strings.Contains(errw.String(), "unknown type nope") {
		t.Errorf("expected unknown type message, got %q", errw.String())
	}

	if !s.command(":quit") {
		t.Error("expected :quit to end the session")
	}
}

func TestSessionDump(t *testing.T) {
	s, out, errw := newTestSession(t)
	s.command(":dump (short) 7")
	if got := out.String(); !strings.Contains(got, "7") || !strings.Contains(got, "Short") {
		t.Errorf("expected a typed dump of 7, got %q", got)
	}
	s.command(":dump")
	if !strings.Contains(errw.String(), "usage: :dump") {
		t.Errorf("expected usage message, got %q", errw.String())
	}
}
