package dyn

import (
	"fmt"

	"dyntype/pkg/errors"
	"dyntype/pkg/kind"
	"dyntype/pkg/signature"
)

// MethodFunc implements a method. receiver is nil for static methods.
type MethodFunc func(receiver any, args ...any) (any, error)

// Method describes one overload of one method. The slot is the override
// key: a subtype method at the same slot replaces the inherited one.
type Method struct {
	owner     *Type
	name      string
	slot      int
	signature string
	static    bool
	body      MethodFunc
	modifiers Modifiers
}

// MethodOption configures a Method.
type MethodOption func(*Method)

// WithBody attaches an implementation used by Instance and BaseDispatcher.
func WithBody(fn MethodFunc) MethodOption {
	return func(m *Method) { m.body = fn }
}

// WithModifiers sets the declared modifiers. Static is implied by the
// static flag and need not be repeated.
func WithModifiers(mods Modifiers) MethodOption {
	return func(m *Method) { m.modifiers = mods }
}

// NewMethod creates a descriptor. sig is a parameter signature in any form
// accepted by signature.Parse; it is stored in descriptor form when valid.
func NewMethod(owner *Type, name string, slot int, sig string, static bool, opts ...MethodOption) *Method {
	if norm, err := signature.Normalize(sig); err == nil {
		sig = norm
	}
	m := &Method{owner: owner, name: name, slot: slot, signature: sig, static: static, modifiers: Public}
	for _, opt := range opts {
		opt(m)
	}
	if static {
		m.modifiers |= Static
	}
	return m
}

func (m *Method) Name() string           { return m.name }
func (m *Method) Owner() *Type           { return m.owner }
func (m *Method) Slot() int              { return m.slot }
func (m *Method) ParamSignature() string { return m.signature }
func (m *Method) IsStatic() bool         { return m.static }
func (m *Method) Modifiers() Modifiers   { return m.modifiers }
func (m *Method) Body() MethodFunc       { return m.body }

// ParamKinds decodes the parameter signature.
func (m *Method) ParamKinds() ([]kind.Kind, error) { return signature.Parse(m.signature) }

// IsConstructor reports whether m is a constructor: a static method named
// after the simple name of its owner.
func (m *Method) IsConstructor() bool {
	return m.static && m.name == m.owner.SimpleName()
}

func (m *Method) String() string {
	return fmt.Sprintf("%s.%s%s[%d]", m.owner.Name(), m.name, m.signature, m.slot)
}

// Invoke calls the method. Static methods go to the owner's dispatcher;
// instance methods go to the receiver's slot table when it is an Object
// and to the owner's dispatcher otherwise.
func (m *Method) Invoke(receiver any, args ...any) (any, error) {
	if m.static {
		return m.owner.Dispatcher().InvokeStatic(m.owner, m.slot, args...)
	}
	switch r := receiver.(type) {
	case nil:
		return nil, &errors.UnsupportedOperationError{Op: "invoke", TypeName: m.owner.Name(), Member: m.name, Msg: "nil receiver"}
	case Object:
		return r.InvokeSlot(m.slot, args...)
	}
	return m.owner.Dispatcher().Invoke(receiver, m.slot, args...)
}
