package dyn

import "dyntype/pkg/errors"

// Dispatcher is the per-type fallback used when a receiver does not carry
// slot storage of its own. Generated code supplies one per compiled type,
// usually by embedding BaseDispatcher and overriding the members it
// implements with ordinary accessor calls.
type Dispatcher interface {
	GetStaticProperty(t *Type, slot int) (any, error)
	SetStaticProperty(t *Type, slot int, v any) error
	GetProperty(target any, slot int) (any, error)
	SetProperty(target any, slot int, v any) error
	InvokeStatic(t *Type, slot int, args ...any) (any, error)
	Invoke(target any, slot int, args ...any) (any, error)
}

// BaseDispatcher keeps static values in the type's own static storage and
// runs static methods through their Body. Instance access is unsupported.
type BaseDispatcher struct{}

func (BaseDispatcher) GetStaticProperty(t *Type, slot int) (any, error) {
	return t.LoadStatic(slot), nil
}

func (BaseDispatcher) SetStaticProperty(t *Type, slot int, v any) error {
	t.StoreStatic(slot, v)
	return nil
}

func (BaseDispatcher) GetProperty(target any, slot int) (any, error) {
	return nil, &errors.UnsupportedOperationError{Op: "read", Member: "slot " + itoa(slot), Msg: typeNameOf(target) + " has no slot storage"}
}

func (BaseDispatcher) SetProperty(target any, slot int, v any) error {
	return &errors.UnsupportedOperationError{Op: "write", Member: "slot " + itoa(slot), Msg: typeNameOf(target) + " has no slot storage"}
}

func (BaseDispatcher) InvokeStatic(t *Type, slot int, args ...any) (any, error) {
	m := t.MethodAt(slot)
	if m == nil || m.body == nil {
		return nil, &errors.UnsupportedOperationError{Op: "invokeStatic", TypeName: t.Name(), Member: "slot " + itoa(slot)}
	}
	return m.body(nil, args...)
}

func (BaseDispatcher) Invoke(target any, slot int, args ...any) (any, error) {
	return nil, &errors.UnsupportedOperationError{Op: "invoke", Member: "slot " + itoa(slot), Msg: typeNameOf(target) + " has no slot storage"}
}
