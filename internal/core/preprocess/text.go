package preprocess

import (
	"math"
	"sort"
	"sync"

	"predictkit/internal/core/normalize"
)

var tokenizer = normalize.New()

// TextVectorizer is a frozen TF-IDF vocabulary. Vocabulary is sorted and IDF is aligned with it
type TextVectorizer struct {
	Field      string    `json:"field"`
	Vocabulary []string  `json:"vocabulary"`
	IDF        []float64 `json:"idf"`
	StopWords  bool      `json:"stop_words,omitempty"`

	once  sync.Once
	index map[string]int
}

func stopSet(on bool) map[string]struct{} {
	if on {
		return normalize.EnglishStopWords()
	}
	return nil
}

// fitText keeps the maxVocab terms with the highest corpus frequency (ties broken by term),
// then learns smooth idf ln((1+n)/(1+df))+1 for each
func fitText(field string, docs []string, maxVocab int, stopWords bool) *TextVectorizer {
	stop := stopSet(stopWords)
	tf := map[string]int{}
	df := map[string]int{}
	for _, d := range docs {
		seen := map[string]bool{}
		for _, tok := range tokenizer.Tokens(d, stop) {
			tf[tok]++
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	terms := make([]string, 0, len(tf))
	for term := range tf {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if tf[terms[i]] != tf[terms[j]] {
			return tf[terms[i]] > tf[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if maxVocab > 0 && len(terms) > maxVocab {
		terms = terms[:maxVocab]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return &TextVectorizer{Field: field, Vocabulary: terms, IDF: idf, StopWords: stopWords}
}

func (v *TextVectorizer) lookup() map[string]int {
	v.once.Do(func() {
		v.index = make(map[string]int, len(v.Vocabulary))
		for i, term := range v.Vocabulary {
			v.index[term] = i
		}
	})
	return v.index
}

// vector returns the l2-normalised tf-idf row for one document; out of vocabulary terms are dropped
func (v *TextVectorizer) vector(doc string) []float64 {
	idx := v.lookup()
	x := make([]float64, len(v.Vocabulary))
	for _, tok := range tokenizer.Tokens(doc, stopSet(v.StopWords)) {
		if i, ok := idx[tok]; ok {
			x[i]++
		}
	}
	var norm float64
	for i := range x {
		if x[i] != 0 {
			x[i] *= v.IDF[i]
			norm += x[i] * x[i]
		}
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range x {
			x[i] /= norm
		}
	}
	return x
}
