package service

import (
	"reflect"
	"testing"
)

func TestStratify_KeepsClassShares(t *testing.T) {
	y := make([]int, 100)
	for i := 0; i < 30; i++ {
		y[i*3] = 1
	}
	train, test := stratify(y, 0.2, 42)
	if len(train)+len(test) != 100 || len(test) != 20 {
		t.Fatalf("sizes train=%d test=%d", len(train), len(test))
	}
	var pos int
	for _, i := range test {
		pos += y[i]
	}
	if pos != 6 {
		t.Fatalf("positives in test=%d want 6", pos)
	}
	seen := map[int]bool{}
	for _, i := range append(append([]int{}, train...), test...) {
		if seen[i] {
			t.Fatalf("row %d in both partitions", i)
		}
		seen[i] = true
	}

	train2, test2 := stratify(y, 0.2, 42)
	if !reflect.DeepEqual(train, train2) || !reflect.DeepEqual(test, test2) {
		t.Fatalf("same seed gave a different split")
	}
	_, test3 := stratify(y, 0.2, 7)
	if reflect.DeepEqual(test, test3) {
		t.Fatalf("different seeds gave the same split")
	}
}

func TestStratify_SmallClassesKeepOneEachSide(t *testing.T) {
	y := []int{0, 0, 0, 0, 0, 0, 0, 0, 1, 1}
	train, test := stratify(y, 0.2, 42)
	var trainPos, testPos int
	for _, i := range train {
		trainPos += y[i]
	}
	for _, i := range test {
		testPos += y[i]
	}
	if trainPos != 1 || testPos != 1 {
		t.Fatalf("positives train=%d test=%d", trainPos, testPos)
	}
}

func TestCanonical_IgnoresInputOrder(t *testing.T) {
	a := [][]string{{"b", "1"}, {"a", "2"}, {"c", "0"}, {"a", "1"}}
	b := [][]string{{"c", "0"}, {"a", "1"}, {"b", "1"}, {"a", "2"}}
	order := func(rows [][]string) [][]string {
		var out [][]string
		for _, i := range canonical(rows) {
			out = append(out, rows[i])
		}
		return out
	}
	if !reflect.DeepEqual(order(a), order(b)) {
		t.Fatalf("canonical order differs: %v vs %v", order(a), order(b))
	}
}
