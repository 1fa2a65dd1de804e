// Package typeutil routes generic property, method and constructor access
// to dyn descriptors without the caller knowing the receiver's shape.
//
// Three receiver shapes are handled: a dyn.Object, a plain Go value whose
// type was registered with RegisterClass, and a type name string for
// static access. Name lookups that fail are logged and yield nil unless
// Config.StrictLookups is set; capability and operator errors always
// propagate.
package typeutil

import (
	"fmt"
	"sort"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	cmap "github.com/orcaman/concurrent-map"

	"dyntype/pkg/dyn"
	"dyntype/pkg/errors"
	"dyntype/pkg/kind"
	"dyntype/pkg/log"
)

// Runtime is the process scoped registry and dispatch state.
type Runtime struct {
	cfg Config

	types   cmap.ConcurrentMap // type name -> *dyn.Type
	classes cmap.ConcurrentMap // Go type name -> *dyn.Type
	methods *lru.Cache         // methodKey -> *dyn.Method
	props   *WeakMap[dyn.Type, *propertyMemo]

	scopes cmap.ConcurrentMap // token -> weak.Pointer[Scope]
	global *Scope

	lookups    atomic.Int64
	cacheHits  atomic.Int64
	unresolved atomic.Int64
}

// Stats are diagnostic counters.
type Stats struct {
	Types      int
	Classes    int
	Scopes     int
	Lookups    int64
	CacheHits  int64
	Unresolved int64
}

// Default is the runtime used by the package level functions.
var Default = MustNew(DefaultConfig)

// New creates a runtime. Zero fields of cfg take their DefaultConfig value.
func New(cfg Config) (*Runtime, error) {
	cfg = cfg.withDefaults()
	if cfg.LogLevel != "" && !log.SetLevel(cfg.LogLevel) {
		return nil, fmt.Errorf("typeutil: unknown log level %q", cfg.LogLevel)
	}
	methods, err := lru.New(cfg.ResolveCacheSize)
	if err != nil {
		return nil, err
	}
	r := &Runtime{
		cfg:     cfg,
		types:   cmap.New(),
		classes: cmap.New(),
		methods: methods,
		props:   NewWeakMap[dyn.Type, *propertyMemo](),
		scopes:  cmap.New(),
	}
	r.global = newScope()
	return r, nil
}

// MustNew is New that panics on error.
func MustNew(cfg Config) *Runtime {
	r, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Runtime) Config() Config { return r.cfg }

// Register makes t resolvable by name, replacing any type of the same name.
func (r *Runtime) Register(t *dyn.Type) {
	if old, ok := r.Lookup(t.Name()); ok && old != t {
		r.forget(old)
	}
	r.types.Set(t.Name(), t)
	log.Debug("registered type", "type", t.Name())
}

// RegisterClass registers t and binds the Go type of sample to it, so
// plain values of that type resolve to t.
func (r *Runtime) RegisterClass(sample any, t *dyn.Type) {
	r.Register(t)
	r.classes.Set(classKey(sample), t)
}

// Unregister removes the named type and every class bound to it.
func (r *Runtime) Unregister(name string) bool {
	t, ok := r.Lookup(name)
	if !ok {
		return false
	}
	r.types.Remove(name)
	for key, v := range r.classes.Items() {
		if v.(*dyn.Type) == t {
			r.classes.Remove(key)
		}
	}
	r.forget(t)
	return true
}

// Lookup finds a registered type by name.
func (r *Runtime) Lookup(name string) (*dyn.Type, bool) {
	v, ok := r.types.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*dyn.Type), true
}

// FindType resolves a type name for instanceof checks.
func (r *Runtime) FindType(name string) (kind.InstanceChecker, bool) {
	if t, ok := r.Lookup(name); ok {
		return typeChecker{r, t}, true
	}
	return nil, false
}

// typeChecker also accepts plain values bound with RegisterClass.
type typeChecker struct {
	r *Runtime
	t *dyn.Type
}

func (c typeChecker) IsInstance(v any) bool {
	vt, ok := c.r.TypeOf(v)
	return ok && c.t.IsAssignableFrom(vt)
}

// TypeOf returns the type describing v: its own type for a dyn.Object,
// otherwise the type bound to v's Go type.
func (r *Runtime) TypeOf(v any) (*dyn.Type, bool) {
	switch v := v.(type) {
	case nil:
		return nil, false
	case dyn.Object:
		return v.DynType(), true
	case *dyn.Type:
		return v, true
	}
	t, ok := r.classes.Get(classKey(v))
	if !ok {
		return nil, false
	}
	return t.(*dyn.Type), true
}

// Types returns the registered types sorted by name.
func (r *Runtime) Types() []*dyn.Type {
	items := r.types.Items()
	types := make([]*dyn.Type, 0, len(items))
	for _, v := range items {
		types = append(types, v.(*dyn.Type))
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name() < types[j].Name() })
	return types
}

// Invalidate reopens t for registration and drops every resolution cached
// for it.
func (r *Runtime) Invalidate(t *dyn.Type) {
	t.Invalidate()
	r.forget(t)
}

func (r *Runtime) forget(t *dyn.Type) {
	r.props.Delete(t)
	// keys embed the type generation, but an unregistered type keeps its
	// generation, so drop everything
	r.methods.Purge()
}

func (r *Runtime) Stats() Stats {
	return Stats{
		Types:      r.types.Count(),
		Classes:    r.classes.Count(),
		Scopes:     r.scopes.Count(),
		Lookups:    r.lookups.Load(),
		CacheHits:  r.cacheHits.Load(),
		Unresolved: r.unresolved.Load(),
	}
}

func classKey(v any) string { return fmt.Sprintf("%T", v) }

// degrade applies the lookup failure policy of the routing functions.
func (r *Runtime) degrade(op string, err error) error {
	if !errors.IsUnresolved(err) || r.cfg.StrictLookups {
		return err
	}
	r.unresolved.Add(1)
	log.Warn("unresolved lookup", "op", op, "err", err.Error())
	return nil
}

// resolveType accepts a *dyn.Type, a registered type name, or a value
// whose type is known to the runtime.
func (r *Runtime) resolveType(class any) (*dyn.Type, error) {
	if name, ok := class.(string); ok {
		if t, ok := r.Lookup(name); ok {
			return t, nil
		}
		return nil, notRegistered(name)
	}
	if t, ok := r.TypeOf(class); ok {
		return t, nil
	}
	return nil, notRegistered(classKey(class))
}

func notRegistered(name string) error {
	return &errors.UnsupportedOperationError{Op: "lookup", TypeName: name, Msg: "type is not registered"}
}
