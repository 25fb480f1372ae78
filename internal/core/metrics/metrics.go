// Package metrics scores binary predictions against held-out labels
package metrics

import (
	"fmt"
	"strings"
)

// ClassScore holds precision, recall and F1 for one class
type ClassScore struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is a binary classification report. Classes is indexed by the encoded label
type Report struct {
	Classes  [2]ClassScore `json:"classes"`
	Accuracy float64       `json:"accuracy"`
	Macro    ClassScore    `json:"macro"`
	Weighted ClassScore    `json:"weighted"`
	// Confusion[actual][predicted]
	Confusion [2][2]int `json:"confusion"`
}

// Evaluate compares predictions with truth. Undefined ratios (no predicted or no actual
// members of a class) count as 0
func Evaluate(yTrue, yPred []int) Report {
	var r Report
	n := min(len(yTrue), len(yPred))
	for i := 0; i < n; i++ {
		r.Confusion[yTrue[i]&1][yPred[i]&1]++
	}
	correct := r.Confusion[0][0] + r.Confusion[1][1]
	if n > 0 {
		r.Accuracy = float64(correct) / float64(n)
	}

	for c := 0; c < 2; c++ {
		tp := r.Confusion[c][c]
		predicted := r.Confusion[0][c] + r.Confusion[1][c]
		actual := r.Confusion[c][0] + r.Confusion[c][1]
		s := ClassScore{Support: actual}
		s.Precision = ratio(tp, predicted)
		s.Recall = ratio(tp, actual)
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		r.Classes[c] = s
	}

	for _, s := range r.Classes {
		r.Macro.Precision += s.Precision / 2
		r.Macro.Recall += s.Recall / 2
		r.Macro.F1 += s.F1 / 2
		r.Macro.Support += s.Support
		if n > 0 {
			f := float64(s.Support) / float64(n)
			r.Weighted.Precision += s.Precision * f
			r.Weighted.Recall += s.Recall * f
			r.Weighted.F1 += s.F1 * f
		}
	}
	r.Weighted.Support = r.Macro.Support
	return r
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// Format renders the report as a fixed-width table; names labels classes 0 and 1
func (r Report) Format(names [2]string) string {
	width := len("weighted avg")
	for _, n := range names {
		width = max(width, len(n))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%*s %10s %10s %10s %10s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for c, s := range r.Classes {
		fmt.Fprintf(&b, "%*s %10.2f %10.2f %10.2f %10d\n", width, names[c], s.Precision, s.Recall, s.F1, s.Support)
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%*s %10s %10s %10.2f %10d\n", width, "accuracy", "", "", r.Accuracy, r.Macro.Support)
	fmt.Fprintf(&b, "%*s %10.2f %10.2f %10.2f %10d\n", width, "macro avg", r.Macro.Precision, r.Macro.Recall, r.Macro.F1, r.Macro.Support)
	fmt.Fprintf(&b, "%*s %10.2f %10.2f %10.2f %10d\n", width, "weighted avg", r.Weighted.Precision, r.Weighted.Recall, r.Weighted.F1, r.Weighted.Support)
	return b.String()
}

// String formats with the bare class numbers
func (r Report) String() string { return r.Format([2]string{"0", "1"}) }
