// Package module wires inference into the API using modkit
package module

import (
	"predictkit/internal/core/featurespec"
	modkit "predictkit/internal/modkit"
	"predictkit/internal/modkit/httpkit"
	artifacts "predictkit/internal/services/artifacts/domain"
	ihttp "predictkit/internal/services/inference/http"
	isvc "predictkit/internal/services/inference/service"
)

// Ports declares what the module needs injected; Registry is filled in by New
type Ports struct {
	Store    artifacts.StorePort
	Catalog  *featurespec.Catalog
	Registry *isvc.Registry
}

// Module implements the inference API module
type Module struct {
	modkit.Base
	ports Ports
}

// New constructs the module. The artifact store must be injected with modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("tasks"),
		modkit.WithPrefix("/tasks"),
	}, opts...)...)

	injected, _ := b.Ports.(Ports)
	if injected.Store == nil {
		panic("inference module requires the artifact Store port (from services/artifacts)")
	}
	reg := isvc.NewRegistry(injected.Store, injected.Catalog)

	cfg := FromConfig(deps.Cfg)
	hcfg := ihttp.Config{MaxUploadBytes: cfg.MaxUploadBytes, PreviewRows: cfg.PreviewRows}
	if st := httpkit.NewStaticTokens(cfg.Tokens); st != nil {
		hcfg.Auth = st
	}

	return &Module{
		Base:  b.Base(func(r httpkit.Router) { ihttp.Register(r, reg, hcfg) }),
		ports: Ports{Store: injected.Store, Catalog: reg.Catalog(), Registry: reg},
	}
}

// Ports returns the resolved ports, including the scorer registry
func (m *Module) Ports() any { return m.ports }
