// Command predictkit-score scores a CSV batch with a trained model and writes the augmented CSV
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/table"
	"predictkit/internal/modkit"
	"predictkit/internal/platform/config"
	"predictkit/internal/platform/logger"
	"predictkit/internal/platform/store"

	artsmod "predictkit/internal/services/artifacts/module"
	isvc "predictkit/internal/services/inference/service"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fTask     = flag.String("task", "", "task id")
		fModel    = flag.String("model", "", "estimator to use (default: the best stored model)")
		fIn       = flag.String("in", "-", "input CSV, - for stdin")
		fOut      = flag.String("out", "", "output CSV (default <task>_predictions.csv, - for stdout)")
		fPreview  = flag.Int("preview", 5, "rows to print after scoring, 0 to disable")
		fSpecFile = flag.String("spec-file", "", "optional JSON feature spec(s) to register before lookup")
		fDir      = flag.String("artifacts-dir", "", "artifact directory for the fs backend")
		fBackend  = flag.String("backend", "", "artifact backend: fs | pg")
	)
	flag.Parse()

	mustSetEnv("CORE_ARTIFACTS_DIR", *fDir)
	mustSetEnv("CORE_ARTIFACTS_BACKEND", *fBackend)

	l := logger.Named("score")
	if *fTask == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	deps := modkit.Deps{Cfg: root, Log: *l}
	if artsmod.FromConfig(root).Backend == artsmod.BackendPG {
		st, err := store.Open(ctx, store.ConfigFrom(root, "predictkit-score"), store.WithLogger(*l))
		if err != nil {
			l.Fatal().Err(err).Msg("store.Open failed")
		}
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()
		deps.PG = st.PG
	}

	arts, err := artsmod.New(ctx, deps, artsmod.Options{})
	if err != nil {
		l.Fatal().Err(err).Msg("artifact store")
	}

	catalog := featurespec.Default()
	if *fSpecFile != "" {
		if err := catalog.LoadFile(*fSpecFile); err != nil {
			l.Fatal().Err(err).Str("file", *fSpecFile).Msg("load spec file")
		}
	}
	reg := isvc.NewRegistry(arts.Ports().(artsmod.Ports).Store, catalog)
	scorer, err := reg.Get(ctx, *fTask, *fModel)
	if err != nil {
		l.Fatal().Err(err).Msg("load model")
	}

	var in io.Reader = os.Stdin
	if *fIn != "-" {
		f, err := os.Open(*fIn)
		if err != nil {
			l.Fatal().Err(err).Msg("open input")
		}
		defer f.Close()
		in = f
	}
	batch, err := table.ReadCSV(in)
	if err != nil {
		l.Fatal().Err(err).Msg("read input")
	}

	res, err := scorer.Score(ctx, batch)
	if err != nil {
		l.Fatal().Err(err).Str("state", string(res.State)).Msg("batch rejected")
	}

	out := *fOut
	if out == "" {
		out = res.Filename()
	}
	if out == "-" {
		if err := res.Table.WriteCSV(os.Stdout); err != nil {
			l.Fatal().Err(err).Msg("write output")
		}
		return
	}
	if err := writeFile(out, res.Table); err != nil {
		l.Fatal().Err(err).Str("file", out).Msg("write output")
	}

	fmt.Printf("scored %d rows with %s/%s -> %s\n", res.Rows, res.Task, res.Model, out)
	for _, label := range slices.Sorted(maps.Keys(res.Counts)) {
		fmt.Printf("  %s: %d\n", label, res.Counts[label])
	}
	if *fPreview > 0 {
		fmt.Println()
		_ = res.Preview(*fPreview).WriteCSV(os.Stdout)
	}
}

func writeFile(path string, t *table.Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
