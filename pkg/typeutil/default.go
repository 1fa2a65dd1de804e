package typeutil

import (
	"context"

	"dyntype/pkg/dyn"
)

// The functions below operate on Default.

func Register(t *dyn.Type) { Default.Register(t) }
func RegisterClass(sample any, t *dyn.Type) { Default.RegisterClass(sample, t) }
func Lookup(name string) (*dyn.Type, bool) { return Default.Lookup(name) }
func TypeOf(v any) (*dyn.Type, bool) { return Default.TypeOf(v) }

func GetProperty(target, selector any) (any, error) {
	return Default.GetProperty(target, selector)
}

func SetProperty(target, selector, value any) error {
	return Default.SetProperty(target, selector, value)
}

func ResolvePropertyMapping(class any, name string) (dyn.Mapper, error) {
	return Default.ResolvePropertyMapping(class, name)
}

func ResolveMethod(class any, name, sig string) (*dyn.Method, error) {
	return Default.ResolveMethod(class, name, sig)
}

func InvokeMethod(receiver any, m *dyn.Method, args ...any) (any, error) {
	return Default.InvokeMethod(receiver, m, args...)
}

func Invoke(receiver any, name string, args ...any) (any, error) {
	return Default.Invoke(receiver, name, args...)
}

func CreateInstance(class any, sig string, args ...any) (any, error) {
	return Default.CreateInstance(class, sig, args...)
}

func NewScope(parent context.Context) (context.Context, *Scope) { return Default.NewScope(parent) }

func SetThreadLocal(ctx context.Context, key string, value any) {
	Default.SetThreadLocal(ctx, key, value)
}

func GetThreadLocal(ctx context.Context, key string) (any, bool) {
	return Default.GetThreadLocal(ctx, key)
}
