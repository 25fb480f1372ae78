// Command predictkit-train fits the candidate estimators for one task and exports them
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/table"
	"predictkit/internal/modkit"
	"predictkit/internal/platform/config"
	"predictkit/internal/platform/logger"
	"predictkit/internal/platform/store"

	artsmod "predictkit/internal/services/artifacts/module"
	trainmod "predictkit/internal/services/training/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fTask     = flag.String("task", "", "task id: loan | churn | spam | attrition, or one defined in -spec-file")
		fData     = flag.String("data", "", "labelled training CSV")
		fSpecFile = flag.String("spec-file", "", "optional JSON feature spec(s) to register before lookup")
		fEst      = flag.String("estimators", "", "comma separated estimators (default all)")
		fCW       = flag.String("class-weight", "", "none | balanced")
		fSeed     = flag.String("seed", "", "split and estimator seed")
		fFrac     = flag.String("test-fraction", "", "held-out fraction in (0,1)")
		fKeepAll  = flag.Bool("keep-all", false, "export every candidate, not just the best")
		fDir      = flag.String("artifacts-dir", "", "artifact directory for the fs backend")
		fBackend  = flag.String("backend", "", "artifact backend: fs | pg")
	)
	flag.Parse()

	// flags win over the environment
	mustSetEnv("CORE_TRAIN_ESTIMATORS", *fEst)
	mustSetEnv("CORE_TRAIN_CLASS_WEIGHT", *fCW)
	mustSetEnv("CORE_TRAIN_SEED", *fSeed)
	mustSetEnv("CORE_TRAIN_TEST_FRACTION", *fFrac)
	mustSetEnv("CORE_ARTIFACTS_DIR", *fDir)
	mustSetEnv("CORE_ARTIFACTS_BACKEND", *fBackend)

	l := logger.Named("train")
	if *fTask == "" || *fData == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.New()
	deps := modkit.Deps{Cfg: root, Log: *l}

	arts := artsmod.FromConfig(root)
	if arts.Backend == artsmod.BackendPG {
		st, err := store.Open(ctx, store.ConfigFrom(root, "predictkit-train"), store.WithLogger(*l))
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

	artifacts, err := artsmod.New(ctx, deps, artsmod.Options{})
	if err != nil {
		l.Fatal().Err(err).Msg("artifact store")
	}

	catalog := featurespec.Default()
	if *fSpecFile != "" {
		if err := catalog.LoadFile(*fSpecFile); err != nil {
			l.Fatal().Err(err).Str("file", *fSpecFile).Msg("load spec file")
		}
	}
	spec, err := catalog.Lookup(*fTask)
	if err != nil {
		l.Fatal().Err(err).Msg("unknown task")
	}

	f, err := os.Open(*fData)
	if err != nil {
		l.Fatal().Err(err).Msg("open data")
	}
	data, err := table.ReadCSV(f)
	_ = f.Close()
	if err != nil {
		l.Fatal().Err(err).Str("file", *fData).Msg("read data")
	}

	tm := trainmod.New(deps, artifacts.Ports().(artsmod.Ports).Store, trainmod.Options{KeepAll: *fKeepAll})
	in, err := tm.Input()
	if err != nil {
		l.Fatal().Err(err).Msg("training options")
	}
	in.Table, in.Spec = data, spec

	trainer := tm.Ports().(trainmod.Ports).Trainer
	res, err := trainer.Train(ctx, in)
	if err != nil {
		l.Fatal().Err(err).Msg("training failed")
	}

	names := [2]string{spec.Display(0), spec.Display(1)}
	fmt.Printf("task %s: %d train rows, %d test rows, %d dropped (seed %d)\n",
		spec.Task, res.TrainRows, res.TestRows, res.Dropped, res.Seed)
	for i, c := range res.Candidates {
		marker := ""
		if i == res.Best {
			marker = " (best)"
		}
		fmt.Printf("\n== %s%s\n%s\n", c.Model, marker, c.Report.Format(names))
	}

	refs, err := trainer.Export(ctx, res, tm.Options().KeepAll)
	if err != nil {
		l.Fatal().Err(err).Msg("export failed")
	}
	for _, ref := range refs {
		fmt.Printf("saved %s (macro F1 %.4f)\n", ref.Key, ref.MacroF1)
	}
}
