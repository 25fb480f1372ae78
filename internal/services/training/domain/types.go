// Package domain defines training inputs, results and the trainer port
package domain

import (
	"context"
	"time"

	"predictkit/internal/core/estimator"
	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/metrics"
	"predictkit/internal/core/pipeline"
	"predictkit/internal/core/table"
	artifacts "predictkit/internal/services/artifacts/domain"

	"github.com/google/uuid"
)

// Defaults applied to zero Input fields
const (
	DefaultTestFraction = 0.2
	DefaultSeed         = estimator.DefaultSeed
)

// Input is one training run. Zero Estimators means every kind, in estimator.Kinds order.
// A nil Seed means DefaultSeed; zero is a valid seed
type Input struct {
	Table        *table.Table
	Spec         *featurespec.Spec
	Estimators   []estimator.Kind
	ClassWeight  estimator.ClassWeight
	Seed         *int64
	TestFraction float64
}

// Candidate is one fitted estimator and its held-out evaluation
type Candidate struct {
	Model    estimator.Kind
	Pipeline *pipeline.Pipeline
	Report   metrics.Report
}

// Result holds every candidate of a run; Best indexes the winner by macro F1
type Result struct {
	RunID       uuid.UUID
	Spec        *featurespec.Spec
	TrainedAt   time.Time
	TrainRows   int
	TestRows    int
	Dropped     int
	Seed        int64
	ClassWeight estimator.ClassWeight
	Candidates  []Candidate
	Best        int
}

// BestCandidate returns the winning candidate
func (r Result) BestCandidate() Candidate { return r.Candidates[r.Best] }

// TrainerPort fits candidates and exports them to the artifact store
type TrainerPort interface {
	Train(ctx context.Context, in Input) (Result, error)
	// Export writes the best candidate, or every candidate when keepAll is set,
	// replacing any artifact stored under the same key
	Export(ctx context.Context, r Result, keepAll bool) ([]artifacts.Ref, error)
}
