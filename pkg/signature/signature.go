// Package signature encodes and matches method parameter signatures.
//
// A signature is a JVM style descriptor of the parameter kinds, for example
// "(ILjava/lang/String;)". Parse also accepts a plain comma separated list
// of kind names such as "int, java.lang.String".
package signature

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"

	"dyntype/pkg/errors"
	"dyntype/pkg/kind"
)

// Encode renders kinds as a descriptor.
func Encode(kinds ...kind.Kind) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, k := range kinds {
		sb.WriteString(k.Descriptor())
	}
	sb.WriteByte(')')
	return sb.String()
}

// ForValues is the descriptor of the kinds of args.
func ForValues(args ...any) string {
	kinds := make([]kind.Kind, len(args))
	for i, a := range args {
		kinds[i] = kind.Of(a)
	}
	return Encode(kinds...)
}

// descriptorPattern matches one parameter of a descriptor. Array and
// unknown reference types collapse to Object.
var descriptorPattern = regexp2.MustCompile(`\G\[*(?:L[^;]+;|[ZBSCIFJD])`, regexp2.None)

// Parse decodes sig into parameter kinds. The empty string and "()" are
// both the empty parameter list.
func Parse(sig string) ([]kind.Kind, error) {
	sig = strings.TrimSpace(sig)
	if sig == "" || sig == "()" {
		return nil, nil
	}
	if strings.HasPrefix(sig, "(") {
		end := strings.IndexByte(sig, ')')
		if end < 0 {
			return nil, &errors.SyntaxError{Pos: len(sig), Msg: "unterminated descriptor " + sig}
		}
		return parseDescriptor(sig[1:end], 1)
	}
	return parseList(sig)
}

func parseDescriptor(body string, offset int) ([]kind.Kind, error) {
	runes := []rune(body)
	var kinds []kind.Kind
	pos := 0
	for pos < len(runes) {
		m, err := descriptorPattern.FindRunesMatchStartingAt(runes, pos)
		if err != nil {
			return nil, err
		}
		if m == nil || m.Index != pos {
			return nil, &errors.SyntaxError{Pos: offset + pos, Msg: fmt.Sprintf("bad descriptor element %q", string(runes[pos:]))}
		}
		text := m.String()
		switch {
		case strings.HasPrefix(text, "["):
			kinds = append(kinds, kind.Object)
		default:
			k, ok := kind.ForName(text)
			if !ok && len(text) > 2 {
				// Ljava/lang/Integer; -> java.lang.Integer
				k, ok = kind.ForName(strings.ReplaceAll(text[1:len(text)-1], "/", "."))
			}
			if !ok {
				k = kind.Object
			}
			kinds = append(kinds, k)
		}
		pos += m.Length
	}
	return kinds, nil
}

func parseList(list string) ([]kind.Kind, error) {
	parts := strings.Split(list, ",")
	kinds := make([]kind.Kind, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return nil, &errors.SyntaxError{Msg: "empty parameter in " + list}
		}
		if strings.HasSuffix(name, "[]") {
			kinds = append(kinds, kind.Object)
			continue
		}
		k, ok := kind.ForName(name)
		if !ok {
			k = kind.Object
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Normalize returns the descriptor form of sig.
func Normalize(sig string) (string, error) {
	kinds, err := Parse(sig)
	if err != nil {
		return "", err
	}
	return Encode(kinds...), nil
}

// Match reports whether arguments of kinds args can be passed to
// parameters of kinds params. Kinds without an explicit parameter rule
// fall back to assignment compatibility.
func Match(params, args []kind.Kind) bool {
	if len(params) != len(args) {
		return false
	}
	for i, p := range params {
		if !Accepts(p, args[i]) {
			return false
		}
	}
	return true
}

// MatchValues is Match over argument values. A nil argument binds to any
// reference parameter and to no primitive one.
func MatchValues(params []kind.Kind, args []any) bool {
	if len(params) != len(args) {
		return false
	}
	for i, p := range params {
		if args[i] == nil {
			if p.IsPrimitive() || p == kind.Void {
				return false
			}
			continue
		}
		if !Accepts(p, kind.Of(args[i])) {
			return false
		}
	}
	return true
}

// Accepts reports whether a parameter of kind p takes an argument of kind a.
func Accepts(p, a kind.Kind) bool {
	if p == a {
		return true
	}
	ok, err := p.IsAssignableFromParameter(a)
	if err != nil {
		ok, err = p.IsAssignableFromAssignment(a, nil)
	}
	return err == nil && ok
}

// MoreSpecific reports whether every parameter of a can be passed to the
// corresponding parameter of b.
func MoreSpecific(a, b []kind.Kind) bool {
	return Match(b, a)
}
