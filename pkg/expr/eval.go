package expr

import (
	"fmt"
	"strings"

	"dyntype/pkg/errors"
	"dyntype/pkg/kind"
	"dyntype/pkg/signature"
)

// Env binds variable names.
type Env interface {
	Get(name string) (any, bool)
	Set(name string, v any) error
}

// Host performs member access on values. *typeutil.Runtime implements it.
type Host interface {
	GetProperty(target, selector any) (any, error)
	SetProperty(target, selector, value any) error
	Invoke(receiver any, name string, args ...any) (any, error)
	CreateInstance(class any, signature string, args ...any) (any, error)
}

// TypeFinder is an optional Host extension resolving the right-hand side
// of instanceof when it names a registered type.
type TypeFinder interface {
	FindType(name string) (kind.InstanceChecker, bool)
}

// MapEnv is an Env over a plain map.
type MapEnv map[string]any

func (e MapEnv) Get(name string) (any, bool) {
	v, ok := e[name]
	return v, ok
}

func (e MapEnv) Set(name string, v any) error {
	e[name] = v
	return nil
}

// ThisName is the variable that receives unqualified calls.
const ThisName = "this"

// Evaluator evaluates expression trees. Both fields are optional; without
// a Host any member access fails.
type Evaluator struct {
	Env  Env
	Host Host
}

// Eval parses and evaluates src.
func Eval(src string, env Env, host Host) (any, error) {
	n, err := Parse(src)
	if err != nil {
		return nil, err
	}
	e := &Evaluator{Env: env, Host: host}
	return e.Eval(n)
}

// Eval evaluates n.
func (e *Evaluator) Eval(n Node) (any, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil
	case *Ident:
		return e.lookup(n.Name)
	case *Member:
		recv, err := e.receiver(n.X)
		if err != nil {
			return nil, err
		}
		host, err := e.host("get", n.Name)
		if err != nil {
			return nil, err
		}
		return host.GetProperty(recv, n.Name)
	case *Call:
		return e.call(n)
	case *New:
		args, err := e.evalArgs(n.Args)
		if err != nil {
			return nil, err
		}
		host, err := e.host("new", n.Type)
		if err != nil {
			return nil, err
		}
		return host.CreateInstance(n.Type, signature.ForValues(args...), args...)
	case *Unary:
		return e.unary(n)
	case *Binary:
		return e.binary(n)
	case *Cast:
		v, err := e.Eval(n.X)
		if err != nil {
			return nil, err
		}
		return n.To.EvalCast(v)
	case *Conditional:
		c, err := e.Eval(n.Cond)
		if err != nil {
			return nil, err
		}
		b, ok := c.(bool)
		if !ok {
			return nil, &errors.UnsupportedOperatorError{Operator: "?:", ValueKind: kind.Of(c).String()}
		}
		if b {
			return e.Eval(n.Then)
		}
		return e.Eval(n.Else)
	case *Assign:
		return e.assign(n)
	}
	return nil, fmt.Errorf("expr: unknown node %T", n)
}

func (e *Evaluator) lookup(name string) (any, error) {
	if e.Env != nil {
		if v, ok := e.Env.Get(name); ok {
			return v, nil
		}
	}
	return nil, &errors.UnresolvedPropertyError{Name: name, TypeName: "environment"}
}

// receiver evaluates the left side of a member access. An identifier that
// is not bound in the environment names a class, so the access is static.
func (e *Evaluator) receiver(x Node) (any, error) {
	if id, ok := x.(*Ident); ok {
		if e.Env != nil {
			if v, ok := e.Env.Get(id.Name); ok {
				return v, nil
			}
		}
		return id.Name, nil
	}
	return e.Eval(x)
}

func (e *Evaluator) host(op, member string) (Host, error) {
	if e.Host == nil {
		return nil, &errors.UnsupportedOperationError{Op: op, Member: member, Msg: "no host"}
	}
	return e.Host, nil
}

func (e *Evaluator) evalArgs(nodes []Node) ([]any, error) {
	args := make([]any, len(nodes))
	for i, a := range nodes {
		v, err := e.Eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (e *Evaluator) call(n *Call) (any, error) {
	var (
		recv any
		name string
	)
	switch c := n.Callee.(type) {
	case *Member:
		r, err := e.receiver(c.X)
		if err != nil {
			return nil, err
		}
		recv, name = r, c.Name
	case *Ident:
		var ok bool
		if e.Env != nil {
			recv, ok = e.Env.Get(ThisName)
		}
		if !ok {
			return nil, &errors.UnresolvedMethodError{Name: c.Name, TypeName: "environment"}
		}
		name = c.Name
	default:
		return nil, fmt.Errorf("expr: cannot call %s", n.Callee)
	}
	args, err := e.evalArgs(n.Args)
	if err != nil {
		return nil, err
	}
	host, err := e.host("invoke", name)
	if err != nil {
		return nil, err
	}
	return host.Invoke(recv, name, args...)
}

// store writes v into an Ident or Member target.
func (e *Evaluator) store(target Node, v any) error {
	switch t := target.(type) {
	case *Ident:
		if e.Env == nil {
			return &errors.UnsupportedOperationError{Op: "set", Member: t.Name, Msg: "no environment"}
		}
		return e.Env.Set(t.Name, v)
	case *Member:
		recv, err := e.receiver(t.X)
		if err != nil {
			return err
		}
		host, err := e.host("set", t.Name)
		if err != nil {
			return err
		}
		return host.SetProperty(recv, t.Name, v)
	}
	return fmt.Errorf("expr: cannot assign to %s", target)
}

func (e *Evaluator) unary(n *Unary) (any, error) {
	v, err := e.Eval(n.X)
	if err != nil {
		return nil, err
	}
	result, updated, err := kind.Of(v).EvalUnary(n.Op, v)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		if err := e.store(n.X, updated); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (e *Evaluator) binary(n *Binary) (any, error) {
	l, err := e.Eval(n.X)
	if err != nil {
		return nil, err
	}
	if n.Op == "&&" || n.Op == "||" {
		result, decided, err := kind.Of(l).EvalPreConditional(n.Op, l)
		if err != nil {
			return nil, err
		}
		if decided {
			return result, nil
		}
	}
	var r any
	if n.Op == "instanceof" {
		r, err = e.instanceTarget(n.Y)
	} else {
		r, err = e.Eval(n.Y)
	}
	if err != nil {
		return nil, err
	}
	return kind.Binary(n.Op, l, r)
}

// instanceTarget resolves the right operand of instanceof: a kind name, a
// registered type, or an expression yielding an InstanceChecker.
func (e *Evaluator) instanceTarget(y Node) (any, error) {
	name := ""
	switch y := y.(type) {
	case *Ident:
		name = y.Name
	case *Member:
		name = y.String()
	}
	if name != "" {
		if k, ok := kind.ForName(name); ok {
			return k, nil
		}
		if f, ok := e.Host.(TypeFinder); ok {
			if c, ok := f.FindType(name); ok {
				return c, nil
			}
		}
	}
	return e.Eval(y)
}

func (e *Evaluator) assign(n *Assign) (any, error) {
	var cur any
	if n.Op != "=" {
		var err error
		if cur, err = e.Eval(n.Target); err != nil {
			return nil, err
		}
	}
	v, err := e.Eval(n.Value)
	if err != nil {
		return nil, err
	}
	if n.Op != "=" {
		if v, err = kind.Binary(strings.TrimSuffix(n.Op, "="), cur, v); err != nil {
			return nil, err
		}
		// compound assignment casts back to the target's kind
		if ck := kind.Of(cur); ck.IsIntegral() || ck.IsFloating() {
			if v, err = ck.EvalCast(v); err != nil {
				return nil, err
			}
		}
	}
	if err := e.store(n.Target, v); err != nil {
		return nil, err
	}
	return v, nil
}
