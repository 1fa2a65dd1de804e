package typeutil

import (
	"context"
	"runtime"
	"weak"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map"

	"dyntype/pkg/log"
)

// Scope is a per execution key/value store. It stands in for a thread
// local: each logical execution carries its own scope in its context.
type Scope struct {
	token  string
	parent *Scope
	values cmap.ConcurrentMap
}

func newScope() *Scope {
	return &Scope{token: uuid.NewString(), values: cmap.New()}
}

// Token identifies the scope across process boundaries, e.g. in logs or a
// debugger protocol.
func (s *Scope) Token() string { return s.token }

// Get looks key up in s and then in its parents.
func (s *Scope) Get(key string) (any, bool) {
	for c := s; c != nil; c = c.parent {
		if v, ok := c.values.Get(key); ok {
			return v, true
		}
	}
	return nil, false
}

// Set stores value in s only; parents are never written.
func (s *Scope) Set(key string, value any) { s.values.Set(key, value) }

func (s *Scope) Delete(key string) { s.values.Remove(key) }

// Keys returns the keys set directly on s.
func (s *Scope) Keys() []string { return s.values.Keys() }

type scopeKey struct{}

// NewScope derives a context carrying a fresh scope. Lookups that miss in
// the new scope fall through to the scope already in parent, or to the
// runtime's global scope.
func (r *Runtime) NewScope(parent context.Context) (context.Context, *Scope) {
	if parent == nil {
		parent = context.Background()
	}
	s := newScope()
	if p := ScopeFrom(parent); p != nil {
		s.parent = p
	} else {
		s.parent = r.global
	}
	r.scopes.Set(s.token, weak.Make(s))
	runtime.AddCleanup(s, func(token string) { r.scopes.Remove(token) }, s.token)
	log.Debug("new scope", "token", s.token)
	return context.WithValue(parent, scopeKey{}, s), s
}

// ScopeFrom returns the scope carried by ctx, or nil.
func ScopeFrom(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

func (r *Runtime) scopeOf(ctx context.Context) *Scope {
	if s := ScopeFrom(ctx); s != nil {
		return s
	}
	return r.global
}

// SetThreadLocal stores value under key in the scope of ctx. Without a
// scope the value is global to the runtime.
func (r *Runtime) SetThreadLocal(ctx context.Context, key string, value any) {
	r.scopeOf(ctx).Set(key, value)
}

// GetThreadLocal reads key from the scope of ctx and its parents.
func (r *Runtime) GetThreadLocal(ctx context.Context, key string) (any, bool) {
	return r.scopeOf(ctx).Get(key)
}

// ScopeByToken finds a live scope by its token.
func (r *Runtime) ScopeByToken(token string) (*Scope, bool) {
	if token == r.global.token {
		return r.global, true
	}
	v, ok := r.scopes.Get(token)
	if !ok {
		return nil, false
	}
	s := v.(weak.Pointer[Scope]).Value()
	if s == nil {
		r.scopes.Remove(token)
		return nil, false
	}
	return s, true
}

// GlobalScope is the scope used when a context carries none.
func (r *Runtime) GlobalScope() *Scope { return r.global }
