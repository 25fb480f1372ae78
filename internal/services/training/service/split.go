package service

import (
	"math"
	"math/rand"
	"sort"
	"strings"
)

// canonical returns row indices ordered by row contents, so a shuffled copy of the same
// table yields the same order
func canonical(rows [][]string) []int {
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = strings.Join(r, "\x1f")
	}
	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })
	return order
}

// stratify splits positions 0..len(y)-1 into train and test keeping each class's share in
// both partitions. Every class contributes at least one row to each side; callers guarantee
// two rows per class. Both outputs are sorted
func stratify(y []int, frac float64, seed int64) (train, test []int) {
	var byClass [2][]int
	for i, v := range y {
		byClass[v] = append(byClass[v], i)
	}
	rng := rand.New(rand.NewSource(seed))
	for _, members := range byClass {
		idx := append([]int(nil), members...)
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

		n := int(math.Round(float64(len(idx)) * frac))
		n = max(1, min(n, len(idx)-1))
		test = append(test, idx[:n]...)
		train = append(train, idx[n:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}
