// Package normalize provides the deterministic text normalizer and tokenizer used by the TF-IDF vectorizer
// Pipeline order
// 1 Drop invalid UTF-8 and control characters other than whitespace
// 2 Unicode NFKD decomposition
// 3 Case folding
// 4 Remove combining marks and format chars (accents, ZWJ, FEFF)
// 5 Width fold fullwidth to ASCII
// 6 Recompose NFC
// 7 Collapse whitespace to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// MinTokenLen is the shortest token kept, matching the usual \w\w+ token pattern
const MinTokenLen = 2

// Normalizer is concurrency safe when used with the pool below
type Normalizer struct{}

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline
		return transform.Chain(
			runes.Remove(runes.Predicate(isNoise)),
			norm.NFKD,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
			norm.NFC,
		)
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Normalize returns the normalized form of s following the pipeline described above
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	// 1 repair UTF-8 first; the chain replaces invalid bytes with U+FFFD otherwise
	s = strings.ToValidUTF8(s, "")

	// 2-6 transform via pooled chain then reset and return it
	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	// 7 collapse whitespace and trim
	return collapseSpaces(ns)
}

// Tokens normalizes s and splits it into word tokens: maximal runs of letters, digits and '_'
// of at least MinTokenLen runes. Tokens present in stop are dropped. Order follows the text
func (n *Normalizer) Tokens(s string, stop map[string]struct{}) []string {
	ns := n.Normalize(s)
	if ns == "" {
		return nil
	}
	words := strings.FieldsFunc(ns, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) < MinTokenLen {
			continue
		}
		if _, skip := stop[w]; skip {
			continue
		}
		out = append(out, w)
	}
	return out
}

// isNoise matches NUL, DEL and the C0/C1 controls that are not whitespace
func isNoise(r rune) bool { return unicode.IsControl(r) && !unicode.IsSpace(r) }

// collapseSpaces converts whitespace runs to a single ASCII space and trims the edges
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
