package preprocess

import (
	"math"
	"slices"
	"strconv"
)

// NumericColumn standardises one column with statistics learned at fit time.
// Blank or unparseable cells are replaced by Median before scaling
type NumericColumn struct {
	Name   string  `json:"name"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

func parseFloat(v string) (float64, bool) {
	f, err := strconv.ParseFloat(clean(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func fitNumeric(name string, vals []string) NumericColumn {
	parsed := make([]float64, 0, len(vals))
	for _, v := range vals {
		if f, ok := parseFloat(v); ok {
			parsed = append(parsed, f)
		}
	}
	c := NumericColumn{Name: name, Std: 1}
	if len(parsed) == 0 {
		return c
	}
	c.Median = median(parsed)

	// population statistics over filled values
	var sum float64
	for _, v := range vals {
		sum += c.fill(v)
	}
	n := float64(len(vals))
	c.Mean = sum / n
	var ss float64
	for _, v := range vals {
		d := c.fill(v) - c.Mean
		ss += d * d
	}
	if std := math.Sqrt(ss / n); std > 0 {
		c.Std = std
	}
	return c
}

func (c NumericColumn) fill(v string) float64 {
	if f, ok := parseFloat(v); ok {
		return f
	}
	return c.Median
}

func (c NumericColumn) scale(v string) float64 {
	return (c.fill(v) - c.Mean) / c.Std
}

func median(xs []float64) float64 {
	s := slices.Clone(xs)
	slices.Sort(s)
	m := len(s) / 2
	if len(s)%2 == 1 {
		return s[m]
	}
	return (s[m-1] + s[m]) / 2
}
