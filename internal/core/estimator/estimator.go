// Package estimator holds the binary classifiers the trainer can fit. All of them are
// deterministic for a given seed, take per-row sample weights and serialise to JSON
package estimator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	perr "predictkit/internal/platform/errors"
)

// Kind names a classifier implementation; it is also the persisted type tag
type Kind string

const (
	KindLogisticRegression Kind = "logistic_regression"
	KindRandomForest       Kind = "random_forest"
	KindGradientBoosting   Kind = "gradient_boosting"
)

// Kinds lists the supported estimators in their default training order
func Kinds() []Kind {
	return []Kind{KindRandomForest, KindLogisticRegression, KindGradientBoosting}
}

// ParseKind accepts a kind name, case-insensitively, with '-' or '_'
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", perr.WithField(perr.InvalidArgf("unknown estimator %q", s), "estimator")
}

// Classifier is a fitted or fittable binary classifier
type Classifier interface {
	Kind() Kind
	// Fit trains on X with labels in {0,1}. w holds one weight per row; nil means all ones
	Fit(X [][]float64, y []int, w []float64) error
	// PredictProba returns p(y=1) per row
	PredictProba(X [][]float64) []float64
	// Predict thresholds PredictProba at 0.5
	Predict(X [][]float64) []int
	// Inputs is the feature width seen at fit time, 0 before Fit
	Inputs() int
}

// Options tunes the estimators; zero fields take the defaults below
type Options struct {
	Seed int64 `json:"seed"`

	// logistic regression
	MaxIter      int     `json:"max_iter,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	L2           float64 `json:"l2,omitempty"`

	// trees
	Trees          int `json:"trees,omitempty"`
	MaxDepth       int `json:"max_depth,omitempty"`
	MinSamplesLeaf int `json:"min_samples_leaf,omitempty"`
}

// DefaultSeed matches the split seed the trainer uses
const DefaultSeed = 42

// New returns an unfitted classifier of the given kind
func New(kind Kind, o Options) (Classifier, error) {
	switch kind {
	case KindLogisticRegression:
		return NewLogisticRegression(o), nil
	case KindRandomForest:
		return NewRandomForest(o), nil
	case KindGradientBoosting:
		return NewGradientBoosting(o), nil
	}
	return nil, perr.WithField(perr.InvalidArgf("unknown estimator %q", kind), "estimator")
}

type envelope struct {
	Kind  Kind            `json:"kind"`
	Model json.RawMessage `json:"model"`
}

// Marshal encodes c with its kind tag so Unmarshal can restore the concrete type
func Marshal(c Classifier) ([]byte, error) {
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("estimator: marshal %s: %w", c.Kind(), err)
	}
	return json.Marshal(envelope{Kind: c.Kind(), Model: body})
}

// Unmarshal restores a classifier written by Marshal. Unknown kinds and unfitted models are corrupt
func Unmarshal(data []byte) (Classifier, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeArtifactCorrupt, "estimator: decode envelope")
	}
	var c Classifier
	switch env.Kind {
	case KindLogisticRegression:
		c = &LogisticRegression{}
	case KindRandomForest:
		c = &RandomForest{}
	case KindGradientBoosting:
		c = &GradientBoosting{}
	default:
		return nil, perr.ArtifactCorruptf("estimator: unknown kind %q", env.Kind)
	}
	if err := json.Unmarshal(env.Model, c); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeArtifactCorrupt, "estimator: decode %s", env.Kind)
	}
	if c.Inputs() == 0 {
		return nil, perr.ArtifactCorruptf("estimator: %s model is not fitted", env.Kind)
	}
	return c, nil
}

func checkFit(name string, X [][]float64, y []int, w []float64) error {
	if len(X) == 0 {
		return perr.InvalidArgf("%s: empty training set", name)
	}
	if len(y) != len(X) {
		return perr.InvalidArgf("%s: %d rows but %d labels", name, len(X), len(y))
	}
	if w != nil && len(w) != len(X) {
		return perr.InvalidArgf("%s: %d rows but %d weights", name, len(X), len(w))
	}
	p := len(X[0])
	if p == 0 {
		return perr.InvalidArgf("%s: rows have no features", name)
	}
	for i, row := range X {
		if len(row) != p {
			return perr.InvalidArgf("%s: row %d has %d features, want %d", name, i, len(row), p)
		}
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return perr.InvalidArgf("%s: label %d at row %d is not binary", name, v, i)
		}
	}
	return nil
}

func weights(w []float64, n int) []float64 {
	if w != nil {
		return w
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func threshold(p []float64) []int {
	out := make([]int, len(p))
	for i, v := range p {
		if v >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
