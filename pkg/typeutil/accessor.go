package typeutil

import (
	"fmt"
	"sync"

	"dyntype/pkg/dyn"
	"dyntype/pkg/errors"
)

// AccessorState is the cache state of a PropertyAccessor.
type AccessorState uint8

const (
	AccessorUninitialized AccessorState = iota
	AccessorMonomorphic                 // one receiver type cached
	AccessorPolymorphic                 // up to SiteCacheWays types cached
	AccessorMegamorphic                 // too many types, always resolve
)

func (s AccessorState) String() string {
	switch s {
	case AccessorUninitialized:
		return "uninitialized"
	case AccessorMonomorphic:
		return "monomorphic"
	case AccessorPolymorphic:
		return "polymorphic"
	case AccessorMegamorphic:
		return "megamorphic"
	}
	return fmt.Sprintf("AccessorState(%d)", uint8(s))
}

type accessorEntry struct {
	t      *dyn.Type
	gen    uint64
	mapper *dyn.Property
}

// AccessorStats counts cache activity of one accessor.
type AccessorStats struct {
	Hits   uint64
	Misses uint64
}

// PropertyAccessor reads and writes one property name at a single call
// site, caching the resolved mapper per receiver type. An entry is valid
// only for the type generation it was resolved at.
type PropertyAccessor struct {
	r    *Runtime
	name string

	mu      sync.Mutex
	state   AccessorState
	entries []accessorEntry
	hits    uint64
	misses  uint64
}

// NewPropertyAccessor creates an accessor for name bound to r.
func (r *Runtime) NewPropertyAccessor(name string) *PropertyAccessor {
	return &PropertyAccessor{r: r, name: name, entries: make([]accessorEntry, 0, r.cfg.SiteCacheWays)}
}

func (a *PropertyAccessor) Name() string { return a.name }

func (a *PropertyAccessor) State() AccessorState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *PropertyAccessor) Stats() AccessorStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AccessorStats{Hits: a.hits, Misses: a.misses}
}

// Reset drops all cached entries. Counters are kept.
func (a *PropertyAccessor) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = AccessorUninitialized
	a.entries = a.entries[:0]
}

// Get reads the property from target, following the routing failure
// policy of Runtime.GetProperty.
func (a *PropertyAccessor) Get(target any) (any, error) {
	p, recv, err := a.mapper(target)
	if err != nil {
		return nil, a.r.degrade("getProperty", err)
	}
	return p.Read(recv)
}

func (a *PropertyAccessor) Set(target, value any) error {
	p, recv, err := a.mapper(target)
	if err != nil {
		return a.r.degrade("setProperty", err)
	}
	return p.Write(recv, value)
}

func (a *PropertyAccessor) mapper(target any) (*dyn.Property, any, error) {
	t, recv, err := a.r.receiverOf(target)
	if err != nil {
		return nil, nil, (&errors.UnresolvedPropertyError{Name: a.name, TypeName: typeLabel(target)}).CausedBy(err)
	}
	gen := t.Generation()
	if p, ok := a.lookup(t, gen); ok {
		return p, recv, nil
	}
	p, err := a.r.resolveProperty(t, a.name)
	if err != nil {
		return nil, nil, err
	}
	a.update(t, gen, p)
	return p, recv, nil
}

func (a *PropertyAccessor) lookup(t *dyn.Type, gen uint64) (*dyn.Property, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == AccessorMegamorphic {
		a.misses++
		return nil, false
	}
	for i, e := range a.entries {
		if e.t != t || e.gen != gen {
			continue
		}
		a.hits++
		if i > 0 {
			copy(a.entries[1:i+1], a.entries[0:i])
			a.entries[0] = e
		}
		return e.mapper, true
	}
	a.misses++
	return nil, false
}

func (a *PropertyAccessor) update(t *dyn.Type, gen uint64, p *dyn.Property) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == AccessorMegamorphic {
		return
	}
	for i, e := range a.entries {
		if e.t == t {
			// stale generation
			a.entries[i] = accessorEntry{t: t, gen: gen, mapper: p}
			return
		}
	}
	if len(a.entries) >= a.r.cfg.SiteCacheWays {
		a.state = AccessorMegamorphic
		a.entries = a.entries[:0]
		return
	}
	a.entries = append(a.entries, accessorEntry{t: t, gen: gen, mapper: p})
	if len(a.entries) == 1 {
		a.state = AccessorMonomorphic
	} else {
		a.state = AccessorPolymorphic
	}
}
