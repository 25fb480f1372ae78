package estimator

import "math"

// LogisticRegression is an L2-regularised binary logistic model fitted by full-batch gradient descent
type LogisticRegression struct {
	W    []float64 `json:"w"`
	Bias float64   `json:"b"`

	MaxIter      int     `json:"max_iter"`
	LearningRate float64 `json:"learning_rate"`
	L2           float64 `json:"l2"`
	Iterations   int     `json:"iterations"`
}

// NewLogisticRegression applies defaults: 1000 iterations, step 0.5, L2 1e-3
func NewLogisticRegression(o Options) *LogisticRegression {
	m := &LogisticRegression{MaxIter: o.MaxIter, LearningRate: o.LearningRate, L2: o.L2}
	if m.MaxIter <= 0 {
		m.MaxIter = 1000
	}
	if m.LearningRate <= 0 {
		m.LearningRate = 0.5
	}
	if m.L2 <= 0 {
		m.L2 = 1e-3
	}
	return m
}

func (m *LogisticRegression) Kind() Kind  { return KindLogisticRegression }
func (m *LogisticRegression) Inputs() int { return len(m.W) }

// Fit starts from zero weights so repeated fits on the same data agree exactly.
// The loss is the weighted mean log loss; iteration stops early once the gradient vanishes
func (m *LogisticRegression) Fit(X [][]float64, y []int, w []float64) error {
	if err := checkFit("logistic_regression", X, y, w); err != nil {
		return err
	}
	w = weights(w, len(X))
	p := len(X[0])
	m.W = make([]float64, p)
	m.Bias = 0

	var total float64
	for _, v := range w {
		total += v
	}
	if total <= 0 {
		total = 1
	}

	gW := make([]float64, p)
	for it := 0; it < m.MaxIter; it++ {
		clear(gW)
		var gb float64
		for i, row := range X {
			d := w[i] * (m.score(row) - float64(y[i]))
			for j, v := range row {
				if v != 0 {
					gW[j] += d * v
				}
			}
			gb += d
		}
		maxG := math.Abs(gb / total)
		for j := range m.W {
			g := gW[j]/total + m.L2*m.W[j]
			if a := math.Abs(g); a > maxG {
				maxG = a
			}
			m.W[j] -= m.LearningRate * g
		}
		m.Bias -= m.LearningRate * gb / total
		m.Iterations = it + 1
		if maxG < 1e-7 {
			break
		}
	}
	return nil
}

func (m *LogisticRegression) score(row []float64) float64 {
	z := m.Bias
	for j, v := range row {
		z += m.W[j] * v
	}
	return sigmoid(z)
}

func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = m.score(row)
	}
	return out
}

func (m *LogisticRegression) Predict(X [][]float64) []int { return threshold(m.PredictProba(X)) }
