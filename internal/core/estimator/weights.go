package estimator

import (
	"strings"

	perr "predictkit/internal/platform/errors"
)

// ClassWeight selects how rows are reweighted by class before fitting
type ClassWeight string

const (
	// ClassWeightNone weighs every row 1
	ClassWeightNone ClassWeight = "none"
	// ClassWeightBalanced weighs class c by n / (2 * count(c))
	ClassWeightBalanced ClassWeight = "balanced"
)

// ParseClassWeight maps "", "none" and "balanced" to a ClassWeight
func ParseClassWeight(s string) (ClassWeight, error) {
	switch ClassWeight(strings.ToLower(strings.TrimSpace(s))) {
	case "", ClassWeightNone:
		return ClassWeightNone, nil
	case ClassWeightBalanced:
		return ClassWeightBalanced, nil
	}
	return "", perr.WithField(perr.InvalidArgf("unknown class weight %q (want none or balanced)", s), "class_weight")
}

// SampleWeights expands a class weighting into one weight per row
func SampleWeights(y []int, mode ClassWeight) []float64 {
	w := make([]float64, len(y))
	var counts [2]int
	for _, v := range y {
		counts[v&1]++
	}
	per := [2]float64{1, 1}
	if mode == ClassWeightBalanced {
		n := float64(len(y))
		for c := range per {
			if counts[c] > 0 {
				per[c] = n / (2 * float64(counts[c]))
			}
		}
	}
	for i, v := range y {
		w[i] = per[v&1]
	}
	return w
}
