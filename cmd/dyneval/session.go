package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"dyntype/pkg/errors"
	"dyntype/pkg/expr"
	"dyntype/pkg/kind"
	"dyntype/pkg/schema"
	"dyntype/pkg/typeutil"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                3,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// session evaluates lines against one runtime. Variables assigned on
// one line stay visible to the following ones.
type session struct {
	rt  *typeutil.Runtime
	env expr.MapEnv
	out io.Writer
	err io.Writer
}

func newSession(rt *typeutil.Runtime, out, errw io.Writer) *session {
	return &session{rt: rt, env: expr.MapEnv{}, out: out, err: errw}
}

// eval evaluates src and prints its result, or the error.
func (s *session) eval(src string) error {
	v, err := expr.Eval(src, s.env, s.rt)
	if err != nil {
		errors.DisplayErrors(s.err, []error{err})
		return err
	}
	fmt.Fprintln(s.out, kind.ToString(v))
	return nil
}

// run evaluates every non-empty line of r and returns the number of lines
// that failed. Lines starting with # are comments.
func (s *session) run(r io.Reader) (int, error) {
	failed := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if s.eval(line) != nil {
			failed++
		}
	}
	return failed, sc.Err()
}

// command handles a REPL command line. It reports whether the session
// should end.
func (s *session) command(line string) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":types":
		types := s.rt.Types()
		names := make([]string, 0, len(types))
		for _, t := range types {
			names = append(names, t.Name())
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintln(s.out, n)
		}
	case ":layout":
		if len(fields) != 2 {
			fmt.Fprintln(s.err, "usage: :layout <type>")
			return false
		}
		t, ok := s.rt.Lookup(fields[1])
		if !ok {
			fmt.Fprintf(s.err, "unknown type %s\n", fields[1])
			return false
		}
		text, err := schema.Layout(t)
		if err != nil {
			errors.DisplayErrors(s.err, []error{err})
			return false
		}
		fmt.Fprint(s.out, text)
	case ":dump":
		src := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
		if src == "" {
			fmt.Fprintln(s.err, "usage: :dump <expression>")
			return false
		}
		v, err := expr.Eval(src, s.env, s.rt)
		if err != nil {
			errors.DisplayErrors(s.err, []error{err})
			return false
		}
		dumper.Fprint(s.out, v)
		fmt.Fprintln(s.out)
	case ":vars":
		names := make([]string, 0, len(s.env))
		for n := range s.env {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(s.out, "%s = %s\n", n, kind.ToString(s.env[n]))
		}
	case ":stats":
		st := s.rt.Stats()
		fmt.Fprintf(s.out, "types=%d classes=%d scopes=%d lookups=%d hits=%d unresolved=%d\n",
			st.Types, st.Classes, st.Scopes, st.Lookups, st.CacheHits, st.Unresolved)
	default:
		fmt.Fprintf(s.err, "unknown command %s. Commands: :types :layout :dump :vars :stats :quit\n", fields[0])
	}
	return false
}
