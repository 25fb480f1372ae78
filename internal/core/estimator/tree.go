package estimator

import (
	"cmp"
	"math/rand"
	"slices"
)

// Node is one entry of a flattened binary tree; Left < 0 marks a leaf
type Node struct {
	Feature   int     `json:"f,omitempty"`
	Threshold float64 `json:"t,omitempty"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

// Tree is a fitted axis-aligned tree; rows with x[f] <= t go left
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t *Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Left < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// valid checks the shape growTree produces: children always sit after their
// parent, so every walk from the root ends at a leaf
func (t *Tree) valid(width int) bool {
	if len(t.Nodes) == 0 {
		return false
	}
	for i, n := range t.Nodes {
		if n.Left < 0 {
			continue
		}
		if n.Feature < 0 || n.Feature >= width {
			return false
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return false
		}
	}
	return true
}

// splitRule scores a node from its two accumulated per-row statistics (a, b).
// For gini trees a is the weighted positive mass and b the weighted mass; for boosting they
// are the gradient and hessian sums
type splitRule struct {
	score func(a, b float64) float64
	leaf  func(a, b float64) float64
}

var giniRule = splitRule{
	// negative weighted gini impurity: -b * 2p(1-p)
	score: func(a, b float64) float64 {
		if b <= 0 {
			return 0
		}
		return -2 * a * (b - a) / b
	},
	leaf: func(a, b float64) float64 {
		if b <= 0 {
			return 0
		}
		return a / b
	},
}

func newtonRule(lambda float64) splitRule {
	return splitRule{
		score: func(g, h float64) float64 { return g * g / (h + lambda) },
		leaf:  func(g, h float64) float64 { return -g / (h + lambda) },
	}
}

type grower struct {
	X           [][]float64
	a, b        []float64
	rule        splitRule
	maxDepth    int // 0 means unlimited
	minLeaf     int
	maxFeatures int // 0 means all
	rnd         *rand.Rand

	nodes    []Node
	features []int
	order    []int
}

func growTree(g *grower, idx []int) Tree {
	p := len(g.X[0])
	g.features = make([]int, p)
	for j := range g.features {
		g.features[j] = j
	}
	if g.minLeaf < 1 {
		g.minLeaf = 1
	}
	g.nodes = g.nodes[:0]
	g.build(idx, 0)
	return Tree{Nodes: slices.Clone(g.nodes)}
}

func (g *grower) build(idx []int, depth int) int {
	var A, B float64
	for _, i := range idx {
		A += g.a[i]
		B += g.b[i]
	}
	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{Left: -1, Right: -1, Value: g.rule.leaf(A, B)})
	if len(idx) < 2*g.minLeaf || (g.maxDepth > 0 && depth >= g.maxDepth) {
		return id
	}

	f, thr, ok := g.bestSplit(idx, A, B)
	if !ok {
		return id
	}
	var left, right []int
	for _, i := range idx {
		if g.X[i][f] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := g.build(left, depth+1)
	r := g.build(right, depth+1)
	n := &g.nodes[id]
	n.Feature, n.Threshold, n.Left, n.Right = f, thr, l, r
	return id
}

func (g *grower) candidates() []int {
	k := g.maxFeatures
	if k <= 0 || k >= len(g.features) {
		return g.features
	}
	// partial Fisher-Yates
	for i := 0; i < k; i++ {
		j := i + g.rnd.Intn(len(g.features)-i)
		g.features[i], g.features[j] = g.features[j], g.features[i]
	}
	return g.features[:k]
}

func (g *grower) bestSplit(idx []int, A, B float64) (int, float64, bool) {
	const eps = 1e-12
	parent := g.rule.score(A, B)
	bestGain, bestF, bestT := eps, -1, 0.0

	g.order = append(g.order[:0], idx...)
	n := len(idx)
	for _, f := range g.candidates() {
		slices.SortFunc(g.order, func(i, j int) int {
			if c := cmp.Compare(g.X[i][f], g.X[j][f]); c != 0 {
				return c
			}
			return cmp.Compare(i, j)
		})
		var la, lb float64
		for k := 0; k < n-1; k++ {
			i := g.order[k]
			la += g.a[i]
			lb += g.b[i]
			x, next := g.X[i][f], g.X[g.order[k+1]][f]
			if x == next || k+1 < g.minLeaf || n-k-1 < g.minLeaf {
				continue
			}
			if lb <= eps || B-lb <= eps {
				continue
			}
			gain := g.rule.score(la, lb) + g.rule.score(A-la, B-lb) - parent
			if gain > bestGain {
				bestGain, bestF, bestT = gain, f, x+(next-x)/2
			}
		}
	}
	return bestF, bestT, bestF >= 0
}
