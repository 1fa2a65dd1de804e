package expr

import (
	"strings"

	"dyntype/pkg/kind"
)

// Node is an expression tree node.
type Node interface {
	String() string
}

// Literal is a boxed constant.
type Literal struct {
	Value any
}

// Ident names a variable in the environment.
type Ident struct {
	Name string
}

// Member selects a property of X by name.
type Member struct {
	X    Node
	Name string
}

// Call invokes a method. For a Member callee the member's X is the
// receiver; an Ident callee is a call on the environment's receiver.
type Call struct {
	Callee Node
	Args   []Node
}

// New constructs an instance of the named type.
type New struct {
	Type string
	Args []Node
}

// Unary is a prefix or postfix operator application.
type Unary struct {
	Op kind.UnaryOp
	X  Node
}

// Binary is an infix operator application.
type Binary struct {
	Op   string
	X, Y Node
}

// Cast converts X to a value kind.
type Cast struct {
	To kind.Kind
	X  Node
}

// Conditional is cond ? then : els.
type Conditional struct {
	Cond, Then, Else Node
}

// Assign stores Value into Target; Op is "=" or a compound operator
// such as "+=".
type Assign struct {
	Op     string
	Target Node
	Value  Node
}

func (n *Literal) String() string { return kind.ToString(n.Value) }
func (n *Ident) String() string   { return n.Name }
func (n *Member) String() string  { return n.X.String() + "." + n.Name }
func (n *Call) String() string    { return n.Callee.String() + "(" + joinNodes(n.Args) + ")" }
func (n *New) String() string     { return "new " + n.Type + "(" + joinNodes(n.Args) + ")" }
func (n *Unary) String() string {
	if n.Op.IsPostfix() {
		return "(" + n.X.String() + strings.TrimPrefix(n.Op.String(), "x") + ")"
	}
	return "(" + strings.TrimSuffix(n.Op.String(), "x") + n.X.String() + ")"
}
func (n *Binary) String() string {
	return "(" + n.X.String() + " " + n.Op + " " + n.Y.String() + ")"
}
func (n *Cast) String() string { return "((" + n.To.String() + ") " + n.X.String() + ")" }
func (n *Conditional) String() string {
	return "(" + n.Cond.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}
func (n *Assign) String() string {
	return "(" + n.Target.String() + " " + n.Op + " " + n.Value.String() + ")"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}
