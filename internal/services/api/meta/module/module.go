// Package module wires health, readiness and version endpoints into the API
package module

import (
	"time"

	modkit "predictkit/internal/modkit"
	"predictkit/internal/modkit/httpkit"

	metahttp "predictkit/internal/services/api/meta/http"
)

// Ports carries the dependencies readiness checks ping
type Ports struct {
	Artifacts metahttp.Pinger
}

// Module serves the meta endpoints
type Module struct {
	modkit.Base
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	mdeps := metahttp.Deps{
		ServiceName:  "predictkit-api",
		StartedAt:    time.Now(),
		ReadyTimeout: deps.Cfg.Prefix("CORE_API_").MayDuration("READY_TIMEOUT", 2*time.Second),
	}
	arts := metahttp.Check{Name: "artifacts", Required: true}
	if p, ok := b.Ports.(Ports); ok && p.Artifacts != nil {
		arts.Pinger = p.Artifacts
	}
	mdeps.Checks = append(mdeps.Checks, arts)
	if pg, ok := deps.PG.(metahttp.Pinger); ok {
		mdeps.Checks = append(mdeps.Checks, metahttp.Check{Name: "pg", Required: true, Pinger: pg})
	}

	return &Module{
		Base: b.Base(func(r httpkit.Router) { metahttp.Register(r, mdeps) }),
	}
}

// Ports returns nil; nothing depends on meta
func (m *Module) Ports() any { return nil }
