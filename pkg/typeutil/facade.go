package typeutil

import (
	"fmt"
	"strings"
	"weak"

	cmap "github.com/orcaman/concurrent-map"

	"dyntype/pkg/dyn"
	"dyntype/pkg/errors"
	"dyntype/pkg/kind"
	"dyntype/pkg/signature"
)

// propertyMemo caches name resolution for one type generation. It holds
// the properties weakly: each one points back to its owner, which is the
// memo's key or a super type of it, and the owner keeps it alive.
type propertyMemo struct {
	gen    uint64
	byName cmap.ConcurrentMap // name -> weak.Pointer[dyn.Property]
}

// methodKey identifies one resolution. nulls has bit i set when argument i
// was nil, which the descriptor alone cannot tell apart from an Object.
type methodKey struct {
	t     *dyn.Type
	gen   uint64
	name  string
	sig   string
	nulls uint64
}

// ResolvePropertyMapping finds the property name on class or its super
// types. class is a *dyn.Type, a type name, or a value of a known type.
func (r *Runtime) ResolvePropertyMapping(class any, name string) (dyn.Mapper, error) {
	t, err := r.resolveType(class)
	if err != nil {
		return nil, (&errors.UnresolvedPropertyError{Name: name, TypeName: typeLabel(class)}).CausedBy(err)
	}
	p, err := r.resolveProperty(t, name)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Runtime) resolveProperty(t *dyn.Type, name string) (*dyn.Property, error) {
	r.lookups.Add(1)
	gen := t.Generation()
	memo, ok := r.props.Get(t)
	if !ok || memo.gen != gen {
		memo = &propertyMemo{gen: gen, byName: cmap.New()}
		r.props.Set(t, memo)
	}
	if v, ok := memo.byName.Get(name); ok {
		if p := v.(weak.Pointer[dyn.Property]).Value(); p != nil {
			r.cacheHits.Add(1)
			return p, nil
		}
	}
	p := t.PropertyMapper(name)
	if p == nil {
		return nil, &errors.UnresolvedPropertyError{Name: name, TypeName: t.Name()}
	}
	memo.byName.Set(name, weak.Make(p))
	return p, nil
}

// ResolveMethod finds the overload of name on class whose signature is sig.
// When no overload matches exactly, the most specific overload whose
// parameters accept sig's kinds is used.
func (r *Runtime) ResolveMethod(class any, name, sig string) (*dyn.Method, error) {
	t, err := r.resolveType(class)
	if err != nil {
		return nil, (&errors.UnresolvedMethodError{Name: name, Signature: sig, TypeName: typeLabel(class)}).CausedBy(err)
	}
	return r.resolveMethod(t, name, sig, nil)
}

// resolveMethod looks up name by sig, then by applicability. With args
// non-nil the fallback matches the argument values, so nil arguments bind
// to reference parameters.
func (r *Runtime) resolveMethod(t *dyn.Type, name, sig string, args []any) (*dyn.Method, error) {
	r.lookups.Add(1)
	key := methodKey{t: t, gen: t.Generation(), name: name, sig: sig, nulls: nullMask(args)}
	if v, ok := r.methods.Get(key); ok {
		r.cacheHits.Add(1)
		return v.(*dyn.Method), nil
	}
	m := t.Method(name, sig)
	if m != nil && key.nulls != 0 && !acceptsValues(m, args) {
		m = nil
	}
	if m == nil {
		var err error
		if m, err = mostSpecific(t, name, sig, args); err != nil {
			return nil, err
		}
	}
	r.methods.Add(key, m)
	return m, nil
}

// mostSpecific picks, among the applicable overloads, the one whose
// parameters are all assignable to those of every other candidate.
func mostSpecific(t *dyn.Type, name, sig string, args []any) (*dyn.Method, error) {
	var argKinds []kind.Kind
	if args == nil {
		var err error
		if argKinds, err = signature.Parse(sig); err != nil {
			return nil, (&errors.UnresolvedMethodError{Name: name, Signature: sig, TypeName: t.Name()}).CausedBy(err)
		}
	}
	type candidate struct {
		m      *dyn.Method
		params []kind.Kind
	}
	var cands []candidate
	for _, m := range t.Methods(name) {
		params, err := m.ParamKinds()
		if err != nil {
			continue
		}
		if args != nil && signature.MatchValues(params, args) || args == nil && signature.Match(params, argKinds) {
			cands = append(cands, candidate{m, params})
		}
	}
	if len(cands) == 0 {
		return nil, &errors.UnresolvedMethodError{Name: name, Signature: sig, TypeName: t.Name()}
	}
	var best []candidate
	for _, c := range cands {
		specific := true
		for _, o := range cands {
			if o.m != c.m && !signature.MoreSpecific(c.params, o.params) {
				specific = false
				break
			}
		}
		if specific {
			best = append(best, c)
		}
	}
	if len(best) != 1 {
		names := make([]string, len(cands))
		for i, c := range cands {
			names[i] = c.m.Name() + c.m.ParamSignature()
		}
		return nil, (&errors.UnresolvedMethodError{Name: name, Signature: sig, TypeName: t.Name()}).
			CausedBy(fmt.Errorf("ambiguous between %s", strings.Join(names, ", ")))
	}
	return best[0].m, nil
}

func acceptsValues(m *dyn.Method, args []any) bool {
	params, err := m.ParamKinds()
	return err == nil && signature.MatchValues(params, args)
}

func nullMask(args []any) uint64 {
	var mask uint64
	for i, a := range args {
		if a == nil && i < 64 {
			mask |= 1 << i
		}
	}
	return mask
}

// receiverOf splits a routing target into the type to search and the value
// handed to the descriptor; a type name string is a static access.
func (r *Runtime) receiverOf(target any) (*dyn.Type, any, error) {
	if name, ok := target.(string); ok {
		t, ok := r.Lookup(name)
		if !ok {
			return nil, nil, notRegistered(name)
		}
		return t, nil, nil
	}
	t, ok := r.TypeOf(target)
	if !ok {
		return nil, nil, notRegistered(typeLabel(target))
	}
	if _, isType := target.(*dyn.Type); isType {
		return t, nil, nil
	}
	return t, target, nil
}

func (r *Runtime) mapperFor(op string, target, selector any) (dyn.Mapper, any, error) {
	switch sel := selector.(type) {
	case dyn.Mapper:
		if _, isName := target.(string); isName {
			return sel, nil, nil
		}
		return sel, target, nil
	case string:
		t, recv, err := r.receiverOf(target)
		if err != nil {
			return nil, nil, (&errors.UnresolvedPropertyError{Name: sel, TypeName: typeLabel(target)}).CausedBy(err)
		}
		p, err := r.resolveProperty(t, sel)
		if err != nil {
			return nil, nil, err
		}
		return p, recv, nil
	}
	return nil, nil, &errors.UnsupportedOperationError{Op: op, TypeName: typeLabel(target), Msg: "selector must be a property mapper or a name"}
}

// GetProperty reads selector, a dyn.Mapper or a property name, from
// target. An unresolved name logs and yields nil.
func (r *Runtime) GetProperty(target, selector any) (any, error) {
	m, recv, err := r.mapperFor("getProperty", target, selector)
	if err != nil {
		return nil, r.degrade("getProperty", err)
	}
	return m.Read(recv)
}

// SetProperty writes value through selector. Constants are not guarded;
// check IsConstant first where that matters.
func (r *Runtime) SetProperty(target, selector, value any) error {
	m, recv, err := r.mapperFor("setProperty", target, selector)
	if err != nil {
		return r.degrade("setProperty", err)
	}
	return m.Write(recv, value)
}

// InvokeMethod calls m. Boxing of arguments and result is up to the caller.
func (r *Runtime) InvokeMethod(receiver any, m *dyn.Method, args ...any) (any, error) {
	if m == nil {
		return nil, &errors.UnsupportedOperationError{Op: "invokeMethod", TypeName: typeLabel(receiver), Msg: "nil method"}
	}
	if _, isName := receiver.(string); isName && m.IsStatic() {
		receiver = nil
	}
	return m.Invoke(receiver, args...)
}

// Invoke resolves name against the kinds of args and calls it. A type name
// receiver only reaches static methods.
func (r *Runtime) Invoke(receiver any, name string, args ...any) (any, error) {
	sig := signature.ForValues(args...)
	t, recv, err := r.receiverOf(receiver)
	if err != nil {
		err = (&errors.UnresolvedMethodError{Name: name, Signature: sig, TypeName: typeLabel(receiver)}).CausedBy(err)
		return nil, r.degrade("invoke", err)
	}
	m, err := r.resolveMethod(t, name, sig, args)
	if err != nil {
		return nil, r.degrade("invoke", err)
	}
	if recv == nil && !m.IsStatic() {
		return nil, &errors.UnsupportedOperationError{Op: "invoke", TypeName: t.Name(), Member: name, Msg: "instance method called without a receiver"}
	}
	return m.Invoke(recv, args...)
}

// CreateInstance calls the constructor of class matching sig. A type that
// declares no constructors gets a zero argument dyn.Instance.
func (r *Runtime) CreateInstance(class any, sig string, args ...any) (any, error) {
	t, err := r.resolveType(class)
	if err != nil {
		err = (&errors.UnresolvedMethodError{Name: "<init>", Signature: sig, TypeName: typeLabel(class)}).CausedBy(err)
		return nil, r.degrade("createInstance", err)
	}
	if len(args) == 0 && len(t.Constructors()) == 0 {
		return dyn.NewInstance(t)
	}
	m, err := r.resolveMethod(t, t.SimpleName(), sig, args)
	if err == nil && !m.IsConstructor() {
		err = &errors.UnresolvedMethodError{Name: t.SimpleName(), Signature: sig, TypeName: t.Name()}
	}
	if err != nil {
		return nil, r.degrade("createInstance", err)
	}
	return m.Invoke(nil, args...)
}

// CompareMappers reports whether a and b describe the same property: the
// same descriptor, or two slot descriptors of the same name whose owners
// are related by inheritance.
func CompareMappers(a, b dyn.Mapper) bool {
	if a == b {
		return true
	}
	pa, ok := a.(*dyn.Property)
	if !ok {
		return false
	}
	pb, ok := b.(*dyn.Property)
	if !ok || pa == nil || pb == nil || pa.Name() != pb.Name() {
		return false
	}
	return pa.Owner().IsAssignableFrom(pb.Owner()) || pb.Owner().IsAssignableFrom(pa.Owner())
}

func typeLabel(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case *dyn.Type:
		return v.Name()
	case dyn.Object:
		return v.DynType().Name()
	case nil:
		return "null"
	}
	return classKey(v)
}
