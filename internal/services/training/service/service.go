// Package service implements the trainer: split, fit, evaluate and export
package service

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"predictkit/internal/core/estimator"
	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/metrics"
	"predictkit/internal/core/pipeline"
	"predictkit/internal/core/preprocess"
	"predictkit/internal/core/table"
	perr "predictkit/internal/platform/errors"
	"predictkit/internal/platform/logger"
	artifacts "predictkit/internal/services/artifacts/domain"
	dom "predictkit/internal/services/training/domain"

	"github.com/google/uuid"
)

// Config holds estimator tuning shared by every run
type Config struct {
	Estimator estimator.Options
}

// Service implements domain.TrainerPort
type Service struct {
	store artifacts.StorePort
	cfg   Config
	log   *logger.Logger
	now   func() time.Time
}

// New constructs the trainer; store receives exported artifacts
func New(store artifacts.StorePort, cfg Config) *Service {
	return &Service{store: store, cfg: cfg, log: logger.Named("training"), now: time.Now}
}

// Train validates every label before fitting anything, then fits the transform on the training
// partition and each estimator on top of it
func (s *Service) Train(ctx context.Context, in dom.Input) (dom.Result, error) {
	start := time.Now()
	in, err := normalizeInput(in)
	if err != nil {
		return dom.Result{}, err
	}
	spec := in.Spec

	data, y, dropped, err := labelled(in.Table, spec)
	if err != nil {
		return dom.Result{}, err
	}
	var counts [2]int
	for _, v := range y {
		counts[v]++
	}
	for c, n := range counts {
		if n < 2 {
			return dom.Result{}, perr.WithField(perr.InvalidArgf(
				"task %q: need at least 2 rows labelled %q to split, got %d", spec.Task, spec.Display(c), n,
			), spec.Label)
		}
	}

	// canonical order first so the split depends on contents and seed only
	order := canonical(data.Rows)
	rows := make([][]string, len(order))
	labels := make([]int, len(order))
	for i, o := range order {
		rows[i], labels[i] = data.Rows[o], y[o]
	}
	trainIdx, testIdx := stratify(labels, in.TestFraction, *in.Seed)
	train, yTrain := pick(data.Header, rows, labels, trainIdx)
	test, yTest := pick(data.Header, rows, labels, testIdx)

	tr, err := preprocess.Fit(train, spec)
	if err != nil {
		return dom.Result{}, err
	}
	XTrain, err := tr.Apply(train)
	if err != nil {
		return dom.Result{}, err
	}
	XTest, err := tr.Apply(test)
	if err != nil {
		return dom.Result{}, err
	}
	w := estimator.SampleWeights(yTrain, in.ClassWeight)

	res := dom.Result{
		RunID:       uuid.New(),
		Spec:        spec,
		TrainedAt:   s.now().UTC(),
		TrainRows:   len(yTrain),
		TestRows:    len(yTest),
		Dropped:     dropped,
		Seed:        *in.Seed,
		ClassWeight: in.ClassWeight,
	}
	names := [2]string{spec.Display(0), spec.Display(1)}

	opts := s.cfg.Estimator
	opts.Seed = *in.Seed
	for _, kind := range in.Estimators {
		if err := ctx.Err(); err != nil {
			return dom.Result{}, err
		}
		c, err := estimator.New(kind, opts)
		if err != nil {
			return dom.Result{}, err
		}
		fitStart := time.Now()
		if err := c.Fit(XTrain, yTrain, w); err != nil {
			return dom.Result{}, perr.WithOp(err, "training.Fit "+string(kind))
		}
		p, err := pipeline.New(tr, c)
		if err != nil {
			return dom.Result{}, err
		}
		rep := metrics.Evaluate(yTest, c.Predict(XTest))
		res.Candidates = append(res.Candidates, dom.Candidate{Model: kind, Pipeline: p, Report: rep})

		s.log.Info().
			Str("task", spec.Task).
			Str("model", string(kind)).
			Str("run_id", res.RunID.String()).
			Float64("accuracy", rep.Accuracy).
			Float64("macro_f1", rep.Macro.F1).
			Dur("elapsed", time.Since(fitStart)).
			Msg("candidate evaluated\n" + rep.Format(names))
	}

	for i, c := range res.Candidates {
		if c.Report.Macro.F1 > res.Candidates[res.Best].Report.Macro.F1 {
			res.Best = i
		}
	}

	s.log.Info().
		Str("task", spec.Task).
		Str("best", string(res.BestCandidate().Model)).
		Int("train_rows", res.TrainRows).
		Int("test_rows", res.TestRows).
		Int("dropped", res.Dropped).
		Str("class_weight", string(res.ClassWeight)).
		Int64("seed", res.Seed).
		Dur("elapsed", time.Since(start)).
		Msg("training finished")
	return res, nil
}

// Export saves the best candidate, or all of them, under (task, model)
func (s *Service) Export(ctx context.Context, r dom.Result, keepAll bool) ([]artifacts.Ref, error) {
	if r.Spec == nil || len(r.Candidates) == 0 {
		return nil, perr.InvalidArgf("training: nothing to export")
	}
	var refs []artifacts.Ref
	for i, c := range r.Candidates {
		if !keepAll && i != r.Best {
			continue
		}
		a := artifacts.Artifact{
			Key:      artifacts.Key{Task: r.Spec.Task, Model: c.Model},
			Spec:     r.Spec,
			Pipeline: c.Pipeline,
			Meta: artifacts.Meta{
				RunID:       r.RunID,
				TrainedAt:   r.TrainedAt,
				TrainRows:   r.TrainRows,
				TestRows:    r.TestRows,
				Seed:        r.Seed,
				ClassWeight: string(r.ClassWeight),
				Metrics:     c.Report,
				Best:        i == r.Best,
			},
		}
		if err := s.store.Save(ctx, a); err != nil {
			return refs, err
		}
		refs = append(refs, artifacts.RefOf(a))
	}
	return refs, nil
}

func normalizeInput(in dom.Input) (dom.Input, error) {
	if in.Table == nil || in.Spec == nil {
		return in, perr.InvalidArgf("training: table and spec are required")
	}
	if len(in.Estimators) == 0 {
		in.Estimators = estimator.Kinds()
	}
	kinds := make([]estimator.Kind, 0, len(in.Estimators))
	for _, raw := range in.Estimators {
		k, err := estimator.ParseKind(string(raw))
		if err != nil {
			return in, err
		}
		if slices.Contains(kinds, k) {
			return in, perr.WithField(perr.InvalidArgf("estimator %q listed twice", k), "estimator")
		}
		kinds = append(kinds, k)
	}
	in.Estimators = kinds
	cw, err := estimator.ParseClassWeight(string(in.ClassWeight))
	if err != nil {
		return in, err
	}
	in.ClassWeight = cw
	if in.Seed == nil {
		seed := int64(dom.DefaultSeed)
		in.Seed = &seed
	}
	if in.TestFraction == 0 {
		in.TestFraction = dom.DefaultTestFraction
	}
	if in.TestFraction <= 0 || in.TestFraction >= 1 {
		return in, perr.WithField(perr.InvalidArgf("test fraction %v must be in (0, 1)", in.TestFraction), "test_fraction")
	}
	return in, nil
}

// labelled projects the training columns, drops rows with a blank label, category or text
// and encodes every remaining label. Numeric blanks stay for median filling. An unknown
// label fails the whole run
func labelled(t *table.Table, spec *featurespec.Spec) (*table.Table, []int, int, error) {
	data, err := t.Project(spec.RequiredColumns(featurespec.ForTraining))
	if err != nil {
		return nil, nil, 0, perr.WithOp(err, "training.Train")
	}
	mustHave := append(spec.CategoricalFields(), spec.Label)
	if spec.Text != "" {
		mustHave = append(mustHave, spec.Text)
	}
	kept := data.DropIncomplete(mustHave)

	li := slices.Index(kept.Header, spec.Label)
	y := make([]int, len(kept.Rows))
	for i, row := range kept.Rows {
		v, err := spec.EncodeLabel(row[li])
		if err != nil {
			return nil, nil, 0, err
		}
		y[i] = v
	}
	if len(y) == 0 {
		return nil, nil, 0, perr.InvalidArgf("task %q: no complete training rows", spec.Task)
	}
	return kept, y, data.Len() - kept.Len(), nil
}

func pick(header []string, rows [][]string, y []int, idx []int) (*table.Table, []int) {
	out := &table.Table{Header: header, Rows: make([][]string, len(idx))}
	ys := make([]int, len(idx))
	for i, j := range idx {
		out.Rows[i], ys[i] = rows[j], y[j]
	}
	return out, ys
}

// ParseEstimators reads a comma separated estimator list; blank means all
func ParseEstimators(s string) ([]estimator.Kind, error) {
	var out []estimator.Kind
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, err := estimator.ParseKind(part)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// ParseSeed reads a seed flag or setting; blank means nil, so the default applies
func ParseSeed(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, perr.WithField(perr.InvalidArgf("seed %q is not an integer", s), "seed")
	}
	return &v, nil
}

var _ dom.TrainerPort = (*Service)(nil)
