// Package service implements batch scoring against a loaded artifact
package service

import (
	"context"
	"strings"
	"time"

	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/pipeline"
	"predictkit/internal/core/table"
	"predictkit/internal/modkit/scope"
	perr "predictkit/internal/platform/errors"
	"predictkit/internal/platform/logger"
	artifacts "predictkit/internal/services/artifacts/domain"
	dom "predictkit/internal/services/inference/domain"
)

// Service scores batches for one artifact. It is immutable after New and safe to share
type Service struct {
	key  artifacts.Key
	spec *featurespec.Spec
	pipe *pipeline.Pipeline
	meta artifacts.Meta
	log  *logger.Logger
}

// New loads the artifact for k; the store is not read again afterwards
func New(ctx context.Context, store artifacts.StorePort, k artifacts.Key) (*Service, error) {
	a, err := store.Load(ctx, k)
	if err != nil {
		return nil, err
	}
	return FromArtifact(a)
}

// FromArtifact builds a service around an already loaded artifact
func FromArtifact(a artifacts.Artifact) (*Service, error) {
	if a.Spec == nil || a.Pipeline == nil {
		return nil, perr.ArtifactCorruptf("artifact %s has no spec or pipeline, retrain it", a.Key)
	}
	if err := a.Pipeline.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		key:  a.Key,
		spec: a.Spec,
		pipe: a.Pipeline,
		meta: a.Meta,
		log:  logger.Named("inference"),
	}, nil
}

// Key implements domain.ScorerPort
func (s *Service) Key() artifacts.Key { return s.key }

// Spec returns the spec the artifact was trained with
func (s *Service) Spec() *featurespec.Spec { return s.spec }

// Meta returns the artifact metadata
func (s *Service) Meta() artifacts.Meta { return s.meta }

// Score validates, predicts, relabels and returns the augmented batch. A batch is scored
// entirely or rejected entirely
func (s *Service) Score(ctx context.Context, t *table.Table) (dom.Result, error) {
	start := time.Now()
	res := dom.Result{Task: s.key.Task, Model: s.key.Model, Column: s.spec.PredictionColumn, State: dom.StateReceived}

	log := s.logFor(ctx)
	out, err := s.score(ctx, t, &res)
	if err != nil {
		res.State = dom.StateRejected
		log.Warn().Err(err).
			Str("task", res.Task).
			Str("model", string(res.Model)).
			Str("state", string(res.State)).
			Dur("elapsed", time.Since(start)).
			Msg("batch rejected")
		return dom.Result{Task: res.Task, Model: res.Model, Column: res.Column, State: res.State}, err
	}

	res.Table, res.Rows, res.State = out, out.Len(), dom.StateDelivered
	log.Info().
		Str("task", res.Task).
		Str("model", string(res.Model)).
		Str("state", string(res.State)).
		Int("rows", res.Rows).
		Interface("counts", res.Counts).
		Dur("elapsed", time.Since(start)).
		Msg("batch scored")
	return res, nil
}

// logFor adds any scope values on ctx to the service logger
func (s *Service) logFor(ctx context.Context) *logger.Logger {
	sc := scope.From(ctx)
	if len(sc.Values) == 0 {
		return s.log
	}
	lc := s.log.With()
	for _, k := range sc.Keys() {
		lc = lc.Str(k, sc.Values[k])
	}
	l := lc.Logger()
	return &l
}

func (s *Service) score(ctx context.Context, t *table.Table, res *dom.Result) (*table.Table, error) {
	if t == nil {
		return nil, perr.InvalidArgf("no batch to score")
	}
	if missing := t.Missing(s.spec.RequiredColumns(featurespec.ForInference)); len(missing) > 0 {
		return nil, perr.WithField(
			perr.SchemaMismatchf("task %q: missing required columns: %s", s.key.Task, strings.Join(missing, ", ")),
			strings.Join(missing, ","),
		)
	}
	if t.Len() == 0 {
		return nil, perr.InvalidArgf("task %q: batch has no rows", s.key.Task)
	}
	res.State = dom.StateValidated

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	preds, err := s.pipe.Predict(t)
	if err != nil {
		return nil, err
	}
	if len(preds) != t.Len() {
		return nil, perr.Internalf("task %q: %d predictions for %d rows", s.key.Task, len(preds), t.Len())
	}
	res.State = dom.StateScored

	labels := make([]string, len(preds))
	res.Counts = make(map[string]int, 2)
	for i, p := range preds {
		labels[i] = s.spec.Display(p)
		res.Counts[labels[i]]++
	}
	out, err := t.WithColumn(s.spec.PredictionColumn, labels)
	if err != nil {
		return nil, err
	}
	res.State = dom.StateRelabeled
	return out, nil
}

var _ dom.ScorerPort = (*Service)(nil)
