// Package pipeline pairs a fitted transform with a fitted classifier
package pipeline

import (
	"encoding/json"

	"predictkit/internal/core/estimator"
	"predictkit/internal/core/preprocess"
	"predictkit/internal/core/table"
	perr "predictkit/internal/platform/errors"
)

// Pipeline is immutable once built; Predict only reads it
type Pipeline struct {
	Transform  *preprocess.Transform
	Classifier estimator.Classifier
}

// New checks the pair fits together
func New(tr *preprocess.Transform, c estimator.Classifier) (*Pipeline, error) {
	p := &Pipeline{Transform: tr, Classifier: c}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports an ArtifactCorrupt error when the parts are missing or disagree on width
func (p *Pipeline) Validate() error {
	if p.Transform == nil || p.Classifier == nil {
		return perr.ArtifactCorruptf("pipeline: missing transform or classifier")
	}
	if err := p.Transform.Validate(); err != nil {
		return err
	}
	if in, w := p.Classifier.Inputs(), p.Transform.Width(); in != w {
		return perr.ArtifactCorruptf("pipeline: classifier expects %d features, transform yields %d", in, w)
	}
	return nil
}

// Kind is the classifier's kind
func (p *Pipeline) Kind() estimator.Kind { return p.Classifier.Kind() }

// Predict returns one class per input row, in row order
func (p *Pipeline) Predict(t *table.Table) ([]int, error) {
	X, err := p.Transform.Apply(t)
	if err != nil {
		return nil, err
	}
	return p.Classifier.Predict(X), nil
}

// PredictProba returns p(y=1) per input row
func (p *Pipeline) PredictProba(t *table.Table) ([]float64, error) {
	X, err := p.Transform.Apply(t)
	if err != nil {
		return nil, err
	}
	return p.Classifier.PredictProba(X), nil
}

type wire struct {
	Transform  *preprocess.Transform `json:"transform"`
	Classifier json.RawMessage       `json:"classifier"`
}

// MarshalJSON writes the transform and the kind-tagged classifier
func (p *Pipeline) MarshalJSON() ([]byte, error) {
	c, err := estimator.Marshal(p.Classifier)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire{Transform: p.Transform, Classifier: c})
}

// UnmarshalJSON restores and validates a pipeline
func (p *Pipeline) UnmarshalJSON(b []byte) error {
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return perr.Wrap(err, perr.ErrorCodeArtifactCorrupt, "pipeline: decode")
	}
	if w.Transform == nil || len(w.Classifier) == 0 {
		return perr.ArtifactCorruptf("pipeline: missing transform or classifier")
	}
	c, err := estimator.Unmarshal(w.Classifier)
	if err != nil {
		return err
	}
	p.Transform, p.Classifier = w.Transform, c
	return p.Validate()
}
