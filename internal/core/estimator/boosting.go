package estimator

import (
	"math"
	"math/rand"
)

// GradientBoosting fits shallow regression trees to the logistic loss gradient, one per round,
// with Newton leaf values. Stored leaves already include the learning rate
type GradientBoosting struct {
	Base  float64 `json:"base"`
	Trees []Tree  `json:"trees"`
	Width int     `json:"width"`

	Rounds       int     `json:"rounds"`
	LearningRate float64 `json:"learning_rate"`
	MaxDepth     int     `json:"max_depth"`
	Lambda       float64 `json:"lambda"`
	Seed         int64   `json:"seed"`
}

// NewGradientBoosting applies defaults: 100 rounds, step 0.1, depth 3, lambda 1
func NewGradientBoosting(o Options) *GradientBoosting {
	m := &GradientBoosting{Rounds: o.Trees, LearningRate: o.LearningRate, MaxDepth: o.MaxDepth, Lambda: 1, Seed: o.Seed}
	if m.Rounds <= 0 {
		m.Rounds = 100
	}
	if m.LearningRate <= 0 || m.LearningRate > 1 {
		m.LearningRate = 0.1
	}
	if m.MaxDepth <= 0 {
		m.MaxDepth = 3
	}
	return m
}

func (m *GradientBoosting) Kind() Kind { return KindGradientBoosting }

func (m *GradientBoosting) Inputs() int {
	if len(m.Trees) == 0 {
		return 0
	}
	for i := range m.Trees {
		if !m.Trees[i].valid(m.Width) {
			return 0
		}
	}
	return m.Width
}

func (m *GradientBoosting) Fit(X [][]float64, y []int, w []float64) error {
	if err := checkFit("gradient_boosting", X, y, w); err != nil {
		return err
	}
	w = weights(w, len(X))
	n := len(X)

	var pos, total float64
	for i := range y {
		pos += w[i] * float64(y[i])
		total += w[i]
	}
	p0 := math.Min(math.Max(pos/total, 1e-6), 1-1e-6)
	m.Base = math.Log(p0 / (1 - p0))

	F := make([]float64, n)
	for i := range F {
		F[i] = m.Base
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	grad := make([]float64, n)
	hess := make([]float64, n)
	g := &grower{
		X: X, a: grad, b: hess, rule: newtonRule(m.Lambda),
		maxDepth: m.MaxDepth, minLeaf: 1, rnd: rand.New(rand.NewSource(m.Seed)),
	}

	m.Trees = make([]Tree, 0, m.Rounds)
	for range m.Rounds {
		for i := range F {
			p := sigmoid(F[i])
			grad[i] = w[i] * (p - float64(y[i]))
			hess[i] = math.Max(w[i]*p*(1-p), 1e-16)
		}
		t := growTree(g, idx)
		for k := range t.Nodes {
			t.Nodes[k].Value *= m.LearningRate
		}
		for i, row := range X {
			F[i] += t.eval(row)
		}
		m.Trees = append(m.Trees, t)
	}
	m.Width = len(X[0])
	return nil
}

func (m *GradientBoosting) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		z := m.Base
		for t := range m.Trees {
			z += m.Trees[t].eval(row)
		}
		out[i] = sigmoid(z)
	}
	return out
}

func (m *GradientBoosting) Predict(X [][]float64) []int { return threshold(m.PredictProba(X)) }
