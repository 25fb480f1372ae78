// Package modkit wires API modules: shared deps, build options and a routing base
// modules embed so they only implement what is theirs
package modkit

import (
	"net/http"

	"predictkit/internal/modkit/httpkit"
	"predictkit/internal/modkit/module"
	"predictkit/internal/modkit/repokit"
	"predictkit/internal/platform/config"
	"predictkit/internal/platform/logger"
	pstrings "predictkit/internal/platform/strings"
)

// Module is the contract api.Mount composes
type Module = module.Module

// Deps holds the shared dependencies passed to every module. PG is nil when no
// database is configured
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}

// Option mutates build configuration for a module
type Option func(*Built)

// Built is the result of applying options
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any

	// Register runs after the module's own routes, on the same subrouter
	Register func(httpkit.Router)
}

// WithName sets the module name used in logs and the port registry
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix mounts a module under a path prefix
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares attaches per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts injects ports owned by another module; the concrete type belongs to the
// module being built
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// WithRegister adds extra routes to the module subrouter
func WithRegister(fn func(httpkit.Router)) Option { return func(b *Built) { b.Register = fn } }

// Build applies opts in order. Later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	return b
}

// Base implements MountRoutes and Name for a module that owns one route prefix
type Base struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	routes []func(httpkit.Router)
}

// Base returns the routing half of a module; own registers the module's endpoints
func (b Built) Base(own func(httpkit.Router)) Base {
	base := Base{name: b.Name, prefix: b.Prefix, mws: append([]func(http.Handler) http.Handler(nil), b.Mw...)}
	for _, fn := range []func(httpkit.Router){own, b.Register} {
		if fn != nil {
			base.routes = append(base.routes, fn)
		}
	}
	return base
}

// MountRoutes mounts the module under its prefix with its middleware
func (m Base) MountRoutes(r httpkit.Router) {
	r.Route(m.Prefix(), func(rr httpkit.Router) {
		if len(m.mws) > 0 {
			rr.Use(m.mws...)
		}
		for _, fn := range m.routes {
			fn(rr)
		}
	})
}

// Name returns the module name; an unnamed module is a wiring bug
func (m Base) Name() string { return pstrings.MustString(m.name, "module name") }

// Prefix returns the normalized route prefix
func (m Base) Prefix() string { return pstrings.MustPrefix(m.prefix) }
