// Package module wires the trainer onto the artifact store
package module

import (
	"predictkit/internal/core/estimator"
	"predictkit/internal/modkit"
	"predictkit/internal/modkit/httpkit"
	artifacts "predictkit/internal/services/artifacts/domain"
	"predictkit/internal/services/training/domain"
	"predictkit/internal/services/training/service"
)

// Ports exposed by the training module
type Ports struct {
	Trainer domain.TrainerPort
}

// Module defines the training module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the trainer on top of store; non-zero overrides win over the environment
func New(deps modkit.Deps, store artifacts.StorePort, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.Seed != "" {
		opts.Seed = overrides.Seed
	}
	if overrides.TestFraction != 0 {
		opts.TestFraction = overrides.TestFraction
	}
	if overrides.ClassWeight != "" {
		opts.ClassWeight = overrides.ClassWeight
	}
	if overrides.Estimators != "" {
		opts.Estimators = overrides.Estimators
	}
	if overrides.KeepAll {
		opts.KeepAll = true
	}
	if overrides.Trees != 0 {
		opts.Trees = overrides.Trees
	}
	if overrides.MaxDepth != 0 {
		opts.MaxDepth = overrides.MaxDepth
	}
	if overrides.MaxIter != 0 {
		opts.MaxIter = overrides.MaxIter
	}

	svc := service.New(store, service.Config{
		Estimator: estimator.Options{
			Trees:    opts.Trees,
			MaxDepth: opts.MaxDepth,
			MaxIter:  opts.MaxIter,
		},
	})
	return &Module{deps: deps, opts: opts, ports: Ports{Trainer: svc}}
}

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

// Input builds a training input from the resolved options
func (m *Module) Input() (domain.Input, error) {
	kinds, err := service.ParseEstimators(m.opts.Estimators)
	if err != nil {
		return domain.Input{}, err
	}
	cw, err := estimator.ParseClassWeight(m.opts.ClassWeight)
	if err != nil {
		return domain.Input{}, err
	}
	seed, err := service.ParseSeed(m.opts.Seed)
	if err != nil {
		return domain.Input{}, err
	}
	return domain.Input{
		Estimators:   kinds,
		ClassWeight:  cw,
		Seed:         seed,
		TestFraction: m.opts.TestFraction,
	}, nil
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "training" }

// Prefix returns no route prefix
func (m *Module) Prefix() string { return "" }

// MountRoutes mounts nothing; training runs offline
func (m *Module) MountRoutes(_ httpkit.Router) {}
