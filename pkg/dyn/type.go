// Package dyn describes types for slot based and name based member access
// without host reflection.
//
// A Type is populated once, by generated registration code, with Property
// and Method descriptors. Subtypes are seeded with their super type's slot
// counts so newly declared properties never reuse an inherited slot, and
// the registering code re-adds every inherited property it needs to the
// subtype. The first call that flattens or indexes a Type seals it; later
// registrations fail until Invalidate reopens it.
package dyn

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"dyntype/pkg/errors"
	"dyntype/pkg/signature"
)

// Bookkeeping properties of parse tree nodes, never reported as semantic
// children.
var nonSemanticNames = map[string]bool{
	"parentNode": true,
	"parseNode":  true,
}

// Type is the descriptor of one class.
type Type struct {
	name       string
	super      *Type
	dispatcher Dispatcher
	generation atomic.Uint64

	mu            sync.Mutex
	properties    map[string]*Property
	order         []*Property // registration order, one entry per name
	methods       []*Method   // own methods by slot
	instanceCount int
	staticCount   int
	dynamicCount  int
	dynamicSeen   map[string]bool
	sealed        bool

	// caches, built on first use
	propertyList []*Property
	staticList   []*Property
	semantic     []*Property
	dynamicIdx   map[string]int
	methodIndex  map[string][]*Method

	smu     sync.RWMutex
	statics []any
}

// NewType creates a type descriptor. propertyCount and methodCount size the
// tables for the members the type itself declares; slot counts start from
// super's.
func NewType(name string, super *Type, propertyCount, methodCount int) *Type {
	t := &Type{
		name:        name,
		super:       super,
		dispatcher:  BaseDispatcher{},
		properties:  make(map[string]*Property, propertyCount),
		order:       make([]*Property, 0, propertyCount),
		methods:     make([]*Method, 0, methodCount),
		dynamicSeen: make(map[string]bool),
	}
	if super != nil {
		super.mu.Lock()
		t.instanceCount = super.instanceCount
		t.staticCount = super.staticCount
		super.mu.Unlock()
	}
	return t
}

// WithDispatcher replaces the fallback dispatcher and returns t.
func (t *Type) WithDispatcher(d Dispatcher) *Type {
	t.mu.Lock()
	t.dispatcher = d
	t.mu.Unlock()
	return t
}

func (t *Type) Dispatcher() Dispatcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dispatcher
}

func (t *Type) Name() string   { return t.name }
func (t *Type) Super() *Type   { return t.super }
func (t *Type) String() string { return t.name }

// SimpleName is the name after the last package separator.
func (t *Type) SimpleName() string {
	if i := strings.LastIndexAny(t.name, "./"); i >= 0 {
		return t.name[i+1:]
	}
	return t.name
}

// Generation increases on every Invalidate.
func (t *Type) Generation() uint64 { return t.generation.Load() }

func (t *Type) sealedError(op, member string) error {
	return &errors.UnsupportedOperationError{Op: op, TypeName: t.name, Member: member, Msg: "type is sealed"}
}

// AddProperty registers p under its name, replacing an earlier descriptor
// of the same name. Slot counts grow to cover p's slot; a dynamic lookup
// property is counted once per name.
func (t *Type) AddProperty(p *Property) error {
	if !p.instanceSlot.IsNone() && !p.staticSlot.IsNone() || p.staticSlot.IsDynamic() {
		return &errors.UnsupportedOperationError{Op: "addProperty", TypeName: t.name, Member: p.name,
			Msg: fmt.Sprintf("invalid slots instance=%s static=%s", p.instanceSlot, p.staticSlot)}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed {
		return t.sealedError("addProperty", p.name)
	}

	switch {
	case p.IsStatic():
		n, _ := p.staticSlot.Index()
		t.staticCount = max(t.staticCount, n+1)
	case p.instanceSlot.IsPositional():
		n, _ := p.instanceSlot.Index()
		t.instanceCount = max(t.instanceCount, n+1)
	}
	if p.instanceSlot.IsDynamic() {
		if !t.dynamicSeen[p.name] {
			t.dynamicSeen[p.name] = true
			t.dynamicCount++
		}
	} else if t.dynamicSeen[p.name] {
		// a concrete registration supersedes an earlier dynamic one
		delete(t.dynamicSeen, p.name)
		t.dynamicCount--
	}

	if prev, ok := t.properties[p.name]; ok {
		for i, q := range t.order {
			if q == prev {
				t.order[i] = p
				break
			}
		}
	} else {
		t.order = append(t.order, p)
	}
	t.properties[p.name] = p
	return nil
}

// AddMethod places m at its slot in this type's own method table.
func (t *Type) AddMethod(m *Method) error {
	if m.slot < 0 {
		return &errors.UnsupportedOperationError{Op: "addMethod", TypeName: t.name, Member: m.name, Msg: "negative slot"}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed {
		return t.sealedError("addMethod", m.name)
	}
	if m.slot >= len(t.methods) {
		grown := make([]*Method, m.slot+1)
		copy(grown, t.methods)
		t.methods = grown
	}
	t.methods[m.slot] = m
	return nil
}

// Properties returns the registered properties in registration order.
func (t *Type) Properties() []*Property {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Property(nil), t.order...)
}

// PropertyList returns the flattened instance property list: positional
// properties at their slot, then dynamic lookup properties in registration
// order. Unused positions are nil. The list is shared; do not modify it.
func (t *Type) PropertyList() ([]*Property, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.flattenLocked(); err != nil {
		return nil, err
	}
	return t.propertyList, nil
}

func (t *Type) flattenLocked() error {
	if t.propertyList != nil {
		return nil
	}
	list := make([]*Property, t.instanceCount+t.dynamicCount)
	idx := make(map[string]int, t.dynamicCount)
	placed := 0
	for _, p := range t.order {
		if p.IsStatic() {
			continue
		}
		switch {
		case p.instanceSlot.IsPositional():
			n, _ := p.instanceSlot.Index()
			if list[n] != nil {
				return &errors.SlotConflictError{TypeName: t.name, Slot: n, Existing: list[n].name, Conflicting: p.name}
			}
			list[n] = p
		case p.instanceSlot.IsDynamic():
			n := t.instanceCount + placed
			placed++
			if n >= len(list) {
				continue
			}
			list[n] = p
			idx[p.name] = n
		}
	}
	if placed != t.dynamicCount {
		return &errors.SlotConflictError{TypeName: t.name, Slot: -1,
			Msg: fmt.Sprintf("expected %d dynamic lookup properties, placed %d", t.dynamicCount, placed)}
	}
	t.propertyList = list
	t.dynamicIdx = idx
	t.sealed = true
	return nil
}

// StaticPropertyList returns the static properties indexed by static slot.
func (t *Type) StaticPropertyList() ([]*Property, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.staticList != nil {
		return t.staticList, nil
	}
	list := make([]*Property, t.staticCount)
	for _, p := range t.order {
		n, ok := p.staticSlot.Index()
		if !ok {
			continue
		}
		if list[n] != nil {
			return nil, &errors.SlotConflictError{TypeName: t.name, Slot: n, Existing: list[n].name, Conflicting: p.name, Static: true}
		}
		list[n] = p
	}
	t.staticList = list
	t.sealed = true
	return list, nil
}

// SemanticPropertyList returns the flattened properties that are backed by
// a declared field that is neither transient nor private, leaving out
// parse tree bookkeeping names.
func (t *Type) SemanticPropertyList() ([]*Property, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.semantic != nil {
		return t.semantic, nil
	}
	if err := t.flattenLocked(); err != nil {
		return nil, err
	}
	semantic := make([]*Property, 0, len(t.propertyList))
	for _, p := range t.propertyList {
		if p == nil || !p.field || p.modifiers.HasAny(Transient|Private) || nonSemanticNames[p.name] {
			continue
		}
		semantic = append(semantic, p)
	}
	t.semantic = semantic
	return semantic, nil
}

func (t *Type) dynamicIndex(name string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.flattenLocked(); err != nil {
		return -1, err
	}
	n, ok := t.dynamicIdx[name]
	if !ok {
		return -1, &errors.UnresolvedPropertyError{Name: name, TypeName: t.name}
	}
	return n, nil
}

func (t *Type) staticAt(i int) *Property {
	list, err := t.StaticPropertyList()
	if err != nil || i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

// PropertyMapper finds name on t or the nearest super type declaring it.
func (t *Type) PropertyMapper(name string) *Property {
	for c := t; c != nil; c = c.super {
		c.mu.Lock()
		p := c.properties[name]
		c.mu.Unlock()
		if p != nil {
			return p
		}
	}
	return nil
}

// Methods returns the overloads of name visible on t, inherited ones
// included. Super type methods are merged first; a method at the same slot
// as an earlier one replaces it. The result is a copy.
func (t *Type) Methods(name string) []*Method {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indexMethodsLocked()
	return append([]*Method(nil), t.methodIndex[name]...)
}

func (t *Type) indexMethodsLocked() {
	if t.methodIndex != nil {
		return
	}
	index := make(map[string][]*Method)
	if t.super != nil {
		for name, ms := range t.super.methodSnapshot() {
			index[name] = append([]*Method(nil), ms...)
		}
	}
	for _, m := range t.methods {
		if m == nil {
			continue
		}
		overloads := index[m.name]
		replaced := false
		for i, o := range overloads {
			if o.slot == m.slot {
				overloads[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			overloads = append(overloads, m)
		}
		index[m.name] = overloads
	}
	t.methodIndex = index
	t.sealed = true
}

func (t *Type) methodSnapshot() map[string][]*Method {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.indexMethodsLocked()
	return t.methodIndex
}

// Method returns the overload of name whose parameter signature is sig,
// or nil. The scan is linear; overload sets are small.
func (t *Type) Method(name, sig string) *Method {
	if norm, err := signature.Normalize(sig); err == nil {
		sig = norm
	}
	for _, m := range t.Methods(name) {
		if m.signature == sig {
			return m
		}
	}
	return nil
}

// MethodAt returns the method at slot, searching super types when t does
// not declare one there.
func (t *Type) MethodAt(slot int) *Method {
	for c := t; c != nil; c = c.super {
		c.mu.Lock()
		var m *Method
		if slot >= 0 && slot < len(c.methods) {
			m = c.methods[slot]
		}
		c.mu.Unlock()
		if m != nil {
			return m
		}
	}
	return nil
}

// Constructors returns the constructors t declares itself.
func (t *Type) Constructors() []*Method {
	var ctors []*Method
	for _, m := range t.Methods(t.SimpleName()) {
		if m.IsConstructor() && m.owner == t {
			ctors = append(ctors, m)
		}
	}
	return ctors
}

// IsAssignableFrom reports whether other is t or a subtype of t.
func (t *Type) IsAssignableFrom(other *Type) bool {
	for c := other; c != nil; c = c.super {
		if c == t {
			return true
		}
	}
	return false
}

// IsInstance reports whether v is an Object whose type is assignable to t.
func (t *Type) IsInstance(v any) bool {
	obj, ok := v.(Object)
	return ok && t.IsAssignableFrom(obj.DynType())
}

// Invalidate drops every cache and reopens t for registration. Subtypes
// keep their own caches and must be invalidated separately.
func (t *Type) Invalidate() {
	t.mu.Lock()
	t.propertyList = nil
	t.staticList = nil
	t.semantic = nil
	t.dynamicIdx = nil
	t.methodIndex = nil
	t.sealed = false
	t.mu.Unlock()
	t.generation.Add(1)
}

// IsSealed reports whether a cache has been built since the last
// Invalidate.
func (t *Type) IsSealed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sealed
}

func (t *Type) InstancePropertyCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.instanceCount
}

func (t *Type) StaticPropertyCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.staticCount
}

func (t *Type) DynamicLookupCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dynamicCount
}

// MethodCount is the size of the method slot table, inherited slots
// included.
func (t *Type) MethodCount() int {
	n := 0
	for c := t; c != nil; c = c.super {
		c.mu.Lock()
		n = max(n, len(c.methods))
		c.mu.Unlock()
	}
	return n
}

// LoadStatic returns the stored value of static slot i, or nil.
func (t *Type) LoadStatic(i int) any {
	t.smu.RLock()
	defer t.smu.RUnlock()
	if i < 0 || i >= len(t.statics) {
		return nil
	}
	return t.statics[i]
}

// StoreStatic sets static slot i, growing the storage as needed.
func (t *Type) StoreStatic(i int, v any) {
	t.smu.Lock()
	defer t.smu.Unlock()
	if i >= len(t.statics) {
		grown := make([]any, i+1)
		copy(grown, t.statics)
		t.statics = grown
	}
	t.statics[i] = v
}
