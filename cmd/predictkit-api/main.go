// @title         predictkit API
// @version       0.1.0
// @description   Batch scoring for trained binary classifiers

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"predictkit/internal/core/featurespec"
	"predictkit/internal/platform/config"
	"predictkit/internal/platform/logger"
	phttp "predictkit/internal/platform/net/http"
	"predictkit/internal/platform/store"

	"predictkit/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// postgres is optional; the fs artifact backend needs no database
	st, err := store.Open(ctx, store.ConfigFrom(root, "predictkit-api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	catalog := featurespec.Default()
	for _, path := range apiCfg.MayCSV("SPEC_FILES", nil) {
		if err := catalog.LoadFile(path); err != nil {
			l.Panic().Err(err).Str("file", path).Msg("load spec file")
		}
	}

	// http server (reads CORE_API_PORT)
	srv := phttp.NewServer(root.Prefix("CORE_"))

	// mount our API
	if err := api.Mount(
		ctx,
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			Catalog:        catalog,
		},
	); err != nil {
		l.Panic().Err(err).Msg("api.Mount failed")
	}

	// serves until SIGINT/SIGTERM, then drains
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
