// Package module wires the artifact store and exposes it as a port
package module

import (
	"context"
	"strings"

	"predictkit/internal/modkit"
	"predictkit/internal/modkit/httpkit"
	perr "predictkit/internal/platform/errors"
	"predictkit/internal/services/artifacts/domain"
	"predictkit/internal/services/artifacts/repo"
	"predictkit/internal/services/artifacts/service"
)

// Ports exposed by the artifacts module
type Ports struct {
	Store domain.StorePort
}

// Module defines the artifacts module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New opens the configured backend. Non-zero overrides win over the environment.
// The pg backend needs deps.PG and creates its table on first use
func New(ctx context.Context, deps modkit.Deps, overrides Options) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if overrides.Backend != "" {
		opts.Backend = overrides.Backend
	}
	if overrides.Dir != "" {
		opts.Dir = overrides.Dir
	}

	var backend domain.StorePort
	switch strings.ToLower(opts.Backend) {
	case BackendPG:
		if deps.PG == nil {
			return nil, perr.InvalidArgf("artifacts: pg backend selected without a database")
		}
		pg := repo.NewPG(deps.PG)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		backend = pg
	case BackendFS, "":
		fs, err := repo.NewFS(opts.Dir)
		if err != nil {
			return nil, err
		}
		backend = fs
	default:
		return nil, perr.InvalidArgf("artifacts: unknown backend %q", opts.Backend)
	}

	m := &Module{deps: deps, opts: opts}
	m.ports = Ports{Store: service.New(backend)}
	return m, nil
}

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "artifacts" }

// Prefix returns no route prefix
func (m *Module) Prefix() string { return "" }

// MountRoutes mounts nothing; artifacts are reached through the inference routes
func (m *Module) MountRoutes(_ httpkit.Router) {}
