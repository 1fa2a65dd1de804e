package dyn

import "dyntype/pkg/errors"

// Object is the dynamic object capability: slot storage plus a link to the
// describing type. Property descriptors check indexes against SlotCount
// before calling GetSlot or SetSlot.
type Object interface {
	DynType() *Type
	SlotCount() int
	GetSlot(i int) any
	SetSlot(i int, v any)
	GetStaticSlot(i int) (any, error)
	SetStaticSlot(i int, v any) error
	InvokeSlot(i int, args ...any) (any, error)
}

// Instance is a general purpose Object whose slots are sized to the
// flattened property list of its type.
type Instance struct {
	t     *Type
	slots []any
}

// NewInstance allocates an instance of t with every slot nil. It flattens
// t, so t is sealed afterwards.
func NewInstance(t *Type) (*Instance, error) {
	list, err := t.PropertyList()
	if err != nil {
		return nil, err
	}
	return &Instance{t: t, slots: make([]any, len(list))}, nil
}

func (o *Instance) DynType() *Type { return o.t }

// SlotCount is fixed at allocation. Properties added to the type after an
// Invalidate have no slot on older instances.
func (o *Instance) SlotCount() int { return len(o.slots) }

// GetSlot returns nil for an index outside the slot array.
func (o *Instance) GetSlot(i int) any {
	if i < 0 || i >= len(o.slots) {
		return nil
	}
	return o.slots[i]
}

// SetSlot ignores an index outside the slot array.
func (o *Instance) SetSlot(i int, v any) {
	if i < 0 || i >= len(o.slots) {
		return
	}
	o.slots[i] = v
}

// GetStaticSlot reads the static property at index i of the type's static
// list through the declaring type's dispatcher. Storage belongs to the
// declaring type, so a subtype shares it.
func (o *Instance) GetStaticSlot(i int) (any, error) {
	p, n, err := o.static("read", i)
	if err != nil {
		return nil, err
	}
	return p.owner.Dispatcher().GetStaticProperty(p.owner, n)
}

func (o *Instance) SetStaticSlot(i int, v any) error {
	p, n, err := o.static("write", i)
	if err != nil {
		return err
	}
	return p.owner.Dispatcher().SetStaticProperty(p.owner, n, v)
}

func (o *Instance) static(op string, i int) (*Property, int, error) {
	p := o.t.staticAt(i)
	if p == nil {
		return nil, -1, &errors.UnsupportedOperationError{Op: op, TypeName: o.t.Name(), Member: "static slot " + itoa(i), Msg: "no static property at slot"}
	}
	n, _ := p.staticSlot.Index()
	return p, n, nil
}

// InvokeSlot runs the method at slot i of the instance's type, which is
// the most derived override. Methods without a Body go to the dispatcher.
func (o *Instance) InvokeSlot(i int, args ...any) (any, error) {
	m := o.t.MethodAt(i)
	if m == nil {
		return nil, &errors.UnsupportedOperationError{Op: "invoke", TypeName: o.t.Name(), Member: "slot " + itoa(i), Msg: "no method at slot"}
	}
	if m.body != nil {
		return m.body(o, args...)
	}
	return o.t.Dispatcher().Invoke(o, i, args...)
}

// InstanceConstructor returns a constructor body that allocates an
// instance of t and stores its arguments in slots 0 to len(args)-1.
func InstanceConstructor(t *Type) MethodFunc {
	return func(_ any, args ...any) (any, error) {
		obj, err := NewInstance(t)
		if err != nil {
			return nil, err
		}
		if len(args) > len(obj.slots) {
			return nil, &errors.UnsupportedOperationError{Op: "construct", TypeName: t.name,
				Msg: itoa(len(args)) + " arguments for " + itoa(len(obj.slots)) + " slots"}
		}
		copy(obj.slots, args)
		return obj, nil
	}
}
