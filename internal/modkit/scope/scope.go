// Package scope carries request attributes across layer boundaries so the service
// layer can tag its logs without knowing about HTTP
package scope

import (
	"context"
	"maps"
	"slices"
)

// Scope holds cross boundary attributes
type Scope struct {
	Values map[string]string
}

type key struct{}

// With returns a child context whose scope is the parent's merged with kv.
// The parent scope is left untouched
func With(ctx context.Context, kv map[string]string) context.Context {
	s := Scope{Values: maps.Clone(From(ctx).Values)}
	maps.Copy(s.Values, kv)
	return context.WithValue(ctx, key{}, s)
}

// Get returns a value and whether it was set
func Get(ctx context.Context, k string) (string, bool) {
	v, ok := From(ctx).Values[k]
	return v, ok
}

// From returns the scope on ctx or an empty one. Values is never nil
func From(ctx context.Context) Scope {
	s, _ := ctx.Value(key{}).(Scope)
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	return s
}

// Keys returns the scope keys in sorted order
func (s Scope) Keys() []string { return slices.Sorted(maps.Keys(s.Values)) }
