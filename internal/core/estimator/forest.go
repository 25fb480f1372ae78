package estimator

import (
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForest is a bagged ensemble of gini CART trees with sqrt(p) features tried per split.
// Each tree draws from its own seeded source so the fitted forest does not depend on scheduling
type RandomForest struct {
	Trees []Tree `json:"trees"`
	Width int    `json:"width"`

	NTrees         int   `json:"n_trees"`
	MaxDepth       int   `json:"max_depth"`
	MinSamplesLeaf int   `json:"min_samples_leaf"`
	Seed           int64 `json:"seed"`
}

// NewRandomForest applies defaults: 100 trees, unlimited depth, one sample per leaf
func NewRandomForest(o Options) *RandomForest {
	m := &RandomForest{NTrees: o.Trees, MaxDepth: o.MaxDepth, MinSamplesLeaf: o.MinSamplesLeaf, Seed: o.Seed}
	if m.NTrees <= 0 {
		m.NTrees = 100
	}
	if m.MinSamplesLeaf <= 0 {
		m.MinSamplesLeaf = 1
	}
	return m
}

func (m *RandomForest) Kind() Kind { return KindRandomForest }

func (m *RandomForest) Inputs() int {
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

func (m *RandomForest) Fit(X [][]float64, y []int, w []float64) error {
	if err := checkFit("random_forest", X, y, w); err != nil {
		return err
	}
	w = weights(w, len(X))
	n, p := len(X), len(X[0])
	maxFeatures := int(math.Sqrt(float64(p)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	trees := make([]Tree, m.NTrees)
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for t := range trees {
		eg.Go(func() error {
			rnd := rand.New(rand.NewSource(m.Seed + int64(t)))
			counts := make([]int, n)
			for range n {
				counts[rnd.Intn(n)]++
			}
			a := make([]float64, n)
			b := make([]float64, n)
			idx := make([]int, 0, n)
			for i, c := range counts {
				if c == 0 {
					continue
				}
				b[i] = w[i] * float64(c)
				a[i] = b[i] * float64(y[i])
				idx = append(idx, i)
			}
			g := &grower{
				X: X, a: a, b: b, rule: giniRule,
				maxDepth: m.MaxDepth, minLeaf: m.MinSamplesLeaf, maxFeatures: maxFeatures, rnd: rnd,
			}
			trees[t] = growTree(g, idx)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	m.Trees, m.Width = trees, p
	return nil
}

func (m *RandomForest) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	if len(m.Trees) == 0 {
		return out
	}
	for i, row := range X {
		var s float64
		for t := range m.Trees {
			s += m.Trees[t].eval(row)
		}
		out[i] = s / float64(len(m.Trees))
	}
	return out
}

func (m *RandomForest) Predict(X [][]float64) []int { return threshold(m.PredictProba(X)) }
