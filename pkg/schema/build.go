package schema

import (
	"github.com/pkg/errors"

	"dyntype/pkg/dyn"
	"dyntype/pkg/log"
	"dyntype/pkg/typeutil"
)

// Build creates and registers a dyn.Type per declaration, super types
// first. A super type not declared in the schema must already be
// registered with rt. Subtypes receive every inherited property before
// their own declarations, which replace inherited ones of the same name.
//
// The returned types are in build order.
func (s *Schema) Build(rt *typeutil.Runtime) ([]*dyn.Type, error) {
	known := func(name string) bool {
		_, ok := rt.Lookup(name)
		return ok
	}
	if err := s.Validate(known); err != nil {
		return nil, err
	}
	decls, err := s.order()
	if err != nil {
		return nil, err
	}
	built := make(map[string]*dyn.Type, len(decls))
	types := make([]*dyn.Type, 0, len(decls))
	for _, td := range decls {
		var super *dyn.Type
		if td.Super != "" {
			if super = built[td.Super]; super == nil {
				super, _ = rt.Lookup(td.Super)
			}
		}
		t, err := td.build(super)
		if err != nil {
			return nil, errors.Wrapf(err, "build %s", td.Name)
		}
		built[td.Name] = t
		types = append(types, t)
	}
	// registration is deferred so a failing schema leaves rt untouched
	for _, t := range types {
		rt.Register(t)
	}
	log.Debug("schema built", "types", len(types))
	return types, nil
}

func (td *TypeDecl) build(super *dyn.Type) (*dyn.Type, error) {
	var inherited []*dyn.Property
	if super != nil {
		inherited = super.Properties()
	}
	t := dyn.NewType(td.Name, super, len(inherited)+len(td.Property), len(td.Method))
	for _, p := range inherited {
		if err := t.AddProperty(p); err != nil {
			return nil, err
		}
	}
	for i := range td.Property {
		p, err := td.Property[i].property(t)
		if err != nil {
			return nil, err
		}
		if err := t.AddProperty(p); err != nil {
			return nil, err
		}
	}
	for i := range td.Method {
		m, err := td.Method[i].method(t, td.Dynamic)
		if err != nil {
			return nil, err
		}
		if err := t.AddMethod(m); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (pd *PropertyDecl) property(owner *dyn.Type) (*dyn.Property, error) {
	var opts []dyn.PropertyOption
	if pd.Constant {
		opts = append(opts, dyn.Constant())
	}
	if pd.Field || pd.Modifiers != "" {
		mods, err := modifiers(pd.Modifiers)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dyn.WithField(mods))
	}
	inst, static := pd.slots()
	return dyn.NewProperty(owner, pd.Name, inst, static, opts...), nil
}

// method builds the descriptor. Constructors of dynamic types allocate a
// dyn.Instance; other types construct through their dispatcher.
func (md *MethodDecl) method(owner *dyn.Type, dynamic bool) (*dyn.Method, error) {
	mods, err := modifiers(md.Modifiers)
	if err != nil {
		return nil, err
	}
	var opts []dyn.MethodOption
	if mods != 0 {
		opts = append(opts, dyn.WithModifiers(mods))
	}
	static := md.Static || md.Constructor
	if md.Constructor && dynamic {
		opts = append(opts, dyn.WithBody(dyn.InstanceConstructor(owner)))
	}
	return dyn.NewMethod(owner, md.methodName(owner.Name()), md.Slot, md.Params, static, opts...), nil
}
