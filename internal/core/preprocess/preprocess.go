// Package preprocess fits the column transform that turns raw table cells into a fixed-width
// float matrix. A Transform is fitted once on training rows and reused verbatim at inference;
// Apply never refits
package preprocess

import (
	"strings"

	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/table"
	perr "predictkit/internal/platform/errors"
)

// Transform is the fitted, serialisable preprocessing state for one task
type Transform struct {
	Task        string              `json:"task"`
	Mode        featurespec.Mode    `json:"mode"`
	Numeric     []NumericColumn     `json:"numeric,omitempty"`
	Categorical []CategoricalColumn `json:"categorical,omitempty"`
	Text        *TextVectorizer     `json:"text,omitempty"`
}

// Fit learns the transform from training rows. Columns beyond the spec's features are ignored
func Fit(t *table.Table, spec *featurespec.Spec) (*Transform, error) {
	if t == nil || spec == nil {
		return nil, perr.InvalidArgf("preprocess: nil table or spec")
	}
	proj, err := t.Project(spec.RequiredColumns(featurespec.ForInference))
	if err != nil {
		return nil, perr.WithOp(err, "preprocess.Fit")
	}
	if proj.Len() == 0 {
		return nil, perr.InvalidArgf("preprocess: task %q has no training rows", spec.Task)
	}

	tr := &Transform{Task: spec.Task, Mode: spec.Mode()}
	if spec.Mode() == featurespec.ModeText {
		docs, _ := proj.Column(spec.Text)
		tr.Text = fitText(spec.Text, docs, spec.MaxVocabulary, spec.StopWords)
		return tr, nil
	}
	for _, name := range spec.Numeric {
		vals, _ := proj.Column(name)
		tr.Numeric = append(tr.Numeric, fitNumeric(name, vals))
	}
	for _, name := range spec.Categorical {
		vals, _ := proj.Column(name)
		tr.Categorical = append(tr.Categorical, fitCategorical(name, vals))
	}
	return tr, nil
}

// Columns returns the input columns Apply reads, in fit order
func (tr *Transform) Columns() []string {
	if tr.Text != nil {
		return []string{tr.Text.Field}
	}
	out := make([]string, 0, len(tr.Numeric)+len(tr.Categorical))
	for _, c := range tr.Numeric {
		out = append(out, c.Name)
	}
	for _, c := range tr.Categorical {
		out = append(out, c.Name)
	}
	return out
}

// Width is the number of output features per row
func (tr *Transform) Width() int {
	if tr.Text != nil {
		return len(tr.Text.Vocabulary)
	}
	w := len(tr.Numeric)
	for _, c := range tr.Categorical {
		w += len(c.Categories)
	}
	return w
}

// FeatureNames lists the output columns in matrix order
func (tr *Transform) FeatureNames() []string {
	out := make([]string, 0, tr.Width())
	if tr.Text != nil {
		for _, term := range tr.Text.Vocabulary {
			out = append(out, "tfidf:"+term)
		}
		return out
	}
	for _, c := range tr.Numeric {
		out = append(out, c.Name)
	}
	for _, c := range tr.Categorical {
		for _, v := range c.Categories {
			out = append(out, c.Name+"="+v)
		}
	}
	return out
}

// Apply maps rows to the fitted feature space. The input header order does not matter and
// extra columns are ignored; any missing column rejects the whole table
func (tr *Transform) Apply(t *table.Table) ([][]float64, error) {
	if err := tr.Validate(); err != nil {
		return nil, err
	}
	proj, err := t.Project(tr.Columns())
	if err != nil {
		return nil, perr.WithOp(err, "preprocess.Apply")
	}

	out := make([][]float64, proj.Len())
	if tr.Text != nil {
		for i, row := range proj.Rows {
			out[i] = tr.Text.vector(row[0])
		}
		return out, nil
	}

	width := tr.Width()
	nNum := len(tr.Numeric)
	for i, row := range proj.Rows {
		x := make([]float64, width)
		for j, c := range tr.Numeric {
			x[j] = c.scale(row[j])
		}
		off := nNum
		for j, c := range tr.Categorical {
			if k := c.index(row[nNum+j]); k >= 0 {
				x[off+k] = 1
			}
			off += len(c.Categories)
		}
		out[i] = x
	}
	return out, nil
}

// Validate checks a decoded transform is internally consistent
func (tr *Transform) Validate() error {
	switch tr.Mode {
	case featurespec.ModeText:
		if tr.Text == nil || len(tr.Text.Vocabulary) != len(tr.Text.IDF) || tr.Text.Field == "" {
			return perr.ArtifactCorruptf("preprocess: text transform for %q is incomplete", tr.Task)
		}
	case featurespec.ModeStructured:
		if tr.Text != nil || len(tr.Numeric)+len(tr.Categorical) == 0 {
			return perr.ArtifactCorruptf("preprocess: structured transform for %q is incomplete", tr.Task)
		}
	default:
		return perr.ArtifactCorruptf("preprocess: unknown mode %q", tr.Mode)
	}
	return nil
}

// Matches reports whether the transform reads exactly the spec's feature columns
func (tr *Transform) Matches(spec *featurespec.Spec) bool {
	want := spec.RequiredColumns(featurespec.ForInference)
	got := tr.Columns()
	if tr.Mode != spec.Mode() || len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

func clean(v string) string { return strings.TrimSpace(v) }
