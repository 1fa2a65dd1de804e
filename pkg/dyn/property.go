package dyn

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"dyntype/pkg/errors"
)

// Mapper reads and writes one named property. *Property is the
// slot based implementation; other implementations may wrap plain Go
// accessors.
type Mapper interface {
	Name() string
	Owner() *Type
	IsConstant() bool
	Read(target any) (any, error)
	Write(target, v any) error
}

// Property describes one property of one type. At most one of the instance
// and static slots is meaningful.
type Property struct {
	owner        *Type
	name         string
	instanceSlot Slot
	staticSlot   Slot
	constant     atomic.Bool
	field        bool
	modifiers    Modifiers
}

// PropertyOption configures a Property.
type PropertyOption func(*Property)

// Constant marks the property as never changing.
func Constant() PropertyOption {
	return func(p *Property) { p.constant.Store(true) }
}

// WithField records that the property is backed by a declared field with
// the given modifiers.
func WithField(mods Modifiers) PropertyOption {
	return func(p *Property) {
		p.field = true
		p.modifiers = mods
	}
}

// NewProperty creates a descriptor. It is not visible through its owner
// until passed to AddProperty.
func NewProperty(owner *Type, name string, instanceSlot, staticSlot Slot, opts ...PropertyOption) *Property {
	p := &Property{owner: owner, name: name, instanceSlot: instanceSlot, staticSlot: staticSlot}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Property) Name() string       { return p.name }
func (p *Property) Owner() *Type       { return p.owner }
func (p *Property) InstanceSlot() Slot { return p.instanceSlot }
func (p *Property) StaticSlot() Slot   { return p.staticSlot }
func (p *Property) IsStatic() bool     { return p.staticSlot.IsPositional() }
func (p *Property) IsConstant() bool   { return p.constant.Load() }

// SetConstant changes the constant hint. Writes are not guarded by it.
func (p *Property) SetConstant(c bool) { p.constant.Store(c) }

// Field reports whether a declared field backs the property, and its
// modifiers.
func (p *Property) Field() (Modifiers, bool) { return p.modifiers, p.field }

func (p *Property) String() string {
	if p.IsStatic() {
		return fmt.Sprintf("%s.%s[static %s]", p.owner.Name(), p.name, p.staticSlot)
	}
	return fmt.Sprintf("%s.%s[%s]", p.owner.Name(), p.name, p.instanceSlot)
}

func (p *Property) unsupported(op string, target any) error {
	return &errors.UnsupportedOperationError{
		Op:       op,
		TypeName: p.owner.Name(),
		Member:   p.name,
		Msg:      "receiver " + typeNameOf(target) + " has no dynamic slot storage",
	}
}

// Read returns the property value of target. Static properties ignore
// target and read through the owner's dispatcher.
func (p *Property) Read(target any) (any, error) {
	if n, ok := p.staticSlot.Index(); ok {
		return p.owner.Dispatcher().GetStaticProperty(p.owner, n)
	}
	if target == nil {
		return nil, p.unsupported("read", nil)
	}
	if obj, ok := target.(Object); ok {
		n, err := p.slotOf("read", obj)
		if err != nil {
			return nil, err
		}
		return obj.GetSlot(n), nil
	}
	if n, ok := p.instanceSlot.Index(); ok {
		return p.owner.Dispatcher().GetProperty(target, n)
	}
	return nil, p.unsupported("read", target)
}

// Write stores v. It does not check IsConstant.
func (p *Property) Write(target, v any) error {
	if n, ok := p.staticSlot.Index(); ok {
		return p.owner.Dispatcher().SetStaticProperty(p.owner, n, v)
	}
	if target == nil {
		return p.unsupported("write", nil)
	}
	if obj, ok := target.(Object); ok {
		n, err := p.slotOf("write", obj)
		if err != nil {
			return err
		}
		obj.SetSlot(n, v)
		return nil
	}
	if n, ok := p.instanceSlot.Index(); ok {
		return p.owner.Dispatcher().SetProperty(target, n, v)
	}
	return p.unsupported("write", target)
}

// slotOf returns the index of p in obj's slot array. The receiver must be
// an instance of the owner, and the slot must exist on it.
func (p *Property) slotOf(op string, obj Object) (int, error) {
	t := obj.DynType()
	if !p.owner.IsAssignableFrom(t) {
		return -1, &errors.UnsupportedOperationError{Op: op, TypeName: p.owner.Name(), Member: p.name,
			Msg: "receiver " + t.Name() + " is not a " + p.owner.Name()}
	}
	n, ok := p.instanceSlot.Index()
	if !ok {
		if !p.instanceSlot.IsDynamic() {
			return -1, p.unsupported(op, obj)
		}
		var err error
		if n, err = t.dynamicIndex(p.name); err != nil {
			return -1, err
		}
	}
	if n >= obj.SlotCount() {
		return -1, &errors.UnsupportedOperationError{Op: op, TypeName: p.owner.Name(), Member: p.name,
			Msg: "slot " + itoa(n) + " outside the " + itoa(obj.SlotCount()) + " slots of the receiver"}
	}
	return n, nil
}

func typeNameOf(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case Object:
		return v.DynType().Name()
	}
	return fmt.Sprintf("%T", v)
}

func itoa(n int) string { return strconv.Itoa(n) }
