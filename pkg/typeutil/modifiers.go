package typeutil

import (
	"dyntype/pkg/dyn"
	"dyntype/pkg/errors"
)

// ModifierByName maps a modifier keyword such as "static" to its bit.
func ModifierByName(name string) (dyn.Modifiers, bool) { return dyn.ModifierByName(name) }

// HasModifier reports whether x carries the named modifier. x is a method,
// a property, a type, or a raw modifier mask.
//
// Properties without field metadata are public, and static when they have
// a static slot. Types are public.
func HasModifier(x any, name string) (bool, error) {
	bit, ok := dyn.ModifierByName(name)
	if !ok {
		return false, &errors.UnsupportedOperationError{Op: "hasModifier", Member: name, Msg: "unknown modifier"}
	}
	var mods dyn.Modifiers
	switch v := x.(type) {
	case *dyn.Method:
		mods = v.Modifiers()
	case *dyn.Property:
		if fm, ok := v.Field(); ok {
			mods = fm
		} else {
			mods = dyn.Public
		}
		if v.IsStatic() {
			mods |= dyn.Static
		}
	case *dyn.Type:
		mods = dyn.Public
	case dyn.Modifiers:
		mods = v
	case int:
		mods = dyn.Modifiers(v)
	case int32:
		mods = dyn.Modifiers(v)
	default:
		return false, &errors.UnsupportedOperationError{Op: "hasModifier", TypeName: typeLabel(x), Member: name, Msg: "value has no modifiers"}
	}
	return mods.Has(bit), nil
}
