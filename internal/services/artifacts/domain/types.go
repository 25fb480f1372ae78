// Package domain defines the persisted artifact and the storage ports for the artifacts service
package domain

import (
	"fmt"
	"time"

	"predictkit/internal/core/estimator"
	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/metrics"
	"predictkit/internal/core/pipeline"
	perr "predictkit/internal/platform/errors"

	"github.com/google/uuid"
)

// Key addresses one artifact. Both parts are validated identifiers, never display strings
type Key struct {
	Task  string         `json:"task"`
	Model estimator.Kind `json:"model"`
}

// NewKey validates task and model
func NewKey(task, model string) (Key, error) {
	if !featurespec.ValidTaskID(task) {
		return Key{}, perr.WithField(perr.InvalidArgf("invalid task id %q", task), "task")
	}
	k, err := estimator.ParseKind(model)
	if err != nil {
		return Key{}, perr.WithField(err, "model")
	}
	return Key{Task: task, Model: k}, nil
}

// String renders task/model
func (k Key) String() string { return fmt.Sprintf("%s/%s", k.Task, k.Model) }

// Meta records how an artifact was produced
type Meta struct {
	RunID       uuid.UUID      `json:"run_id"`
	TrainedAt   time.Time      `json:"trained_at"`
	TrainRows   int            `json:"train_rows"`
	TestRows    int            `json:"test_rows"`
	Seed        int64          `json:"seed"`
	ClassWeight string         `json:"class_weight"`
	Metrics     metrics.Report `json:"metrics"`
	Best        bool           `json:"best"`
}

// Artifact is the matched (pipeline, spec) pair for one key
type Artifact struct {
	Key
	Spec     *featurespec.Spec
	Pipeline *pipeline.Pipeline
	Meta     Meta
}

// Ref summarises a stored artifact without its pipeline
type Ref struct {
	Key
	RunID     uuid.UUID `json:"run_id"`
	TrainedAt time.Time `json:"trained_at"`
	MacroF1   float64   `json:"macro_f1"`
	Best      bool      `json:"best"`
}

// RefOf derives the listing entry for a
func RefOf(a Artifact) Ref {
	return Ref{Key: a.Key, RunID: a.Meta.RunID, TrainedAt: a.Meta.TrainedAt, MacroF1: a.Meta.Metrics.Macro.F1, Best: a.Meta.Best}
}
