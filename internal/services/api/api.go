// Package api provides the HTTP API for the application
package api

import (
	"context"
	"time"

	"predictkit/internal/core/featurespec"
	"predictkit/internal/platform/config"
	"predictkit/internal/platform/logger"
	phttp "predictkit/internal/platform/net/http"
	"predictkit/internal/platform/store"

	"predictkit/internal/modkit"
	"predictkit/internal/modkit/httpkit"
	"predictkit/internal/modkit/module"
	"predictkit/internal/modkit/swaggerkit"

	metamod "predictkit/internal/services/api/meta/module"
	artsmod "predictkit/internal/services/artifacts/module"
	inferencemod "predictkit/internal/services/inference/module"
)

// Options are the API options
type Options struct {
	// Config is the root config; modules read their own CORE_* keys from it
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// Artifacts overrides the artifacts module options, mostly for tests
	Artifacts artsmod.Options
	// Catalog defaults to the built in tasks
	Catalog *featurespec.Catalog
}

// Mount mounts the API service onto the given router
func Mount(ctx context.Context, r phttp.Router, opt Options) error {
	// shared deps for modules
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store != nil && opt.Store.PG != nil {
		deps.PG = opt.Store.PG
	}

	// artifacts first; the other modules take its Store port
	arts, err := artsmod.New(ctx, deps, opt.Artifacts)
	if err != nil {
		return err
	}
	st := module.MustPortsOf[artsmod.Ports](arts).Store

	mods := []module.Module{
		arts,
		inferencemod.New(deps, modkit.WithPorts(inferencemod.Ports{
			Store:   st,
			Catalog: opt.Catalog,
		})),
		metamod.New(deps, modkit.WithPorts(metamod.Ports{Artifacts: st})),
	}

	httpkit.MountAPIV1(r, httpkit.CommonStack(stackOptions(opt.Config)), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
	return nil
}

// stackOptions reads the CORE_API_* middleware settings
func stackOptions(cfg config.Conf) httpkit.StackOptions {
	c := cfg.Prefix("CORE_API_")
	return httpkit.StackOptions{
		Timeout:     c.MayDuration("TIMEOUT", 2*time.Minute),
		MaxInFlight: c.MayInt("MAX_INFLIGHT", 0),
		SlowRequest: c.MayDuration("SLOW_REQUEST", 2*time.Second),
		CORSOrigins: c.MayCSV("CORS_ORIGINS", nil),
	}
}
