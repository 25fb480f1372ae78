package preprocess

import "sort"

// CategoricalColumn one-hot encodes against the categories seen at fit time, sorted.
// Values not in Categories encode as an all-zero block
type CategoricalColumn struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

func fitCategorical(name string, vals []string) CategoricalColumn {
	seen := make(map[string]struct{}, 8)
	for _, v := range vals {
		seen[clean(v)] = struct{}{}
	}
	cats := make([]string, 0, len(seen))
	for v := range seen {
		cats = append(cats, v)
	}
	sort.Strings(cats)
	return CategoricalColumn{Name: name, Categories: cats}
}

func (c CategoricalColumn) index(v string) int {
	v = clean(v)
	i := sort.SearchStrings(c.Categories, v)
	if i < len(c.Categories) && c.Categories[i] == v {
		return i
	}
	return -1
}
