// Package featurespec declares which columns a task reads, what role each plays,
// and how the binary label maps to and from human strings
package featurespec

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	perr "predictkit/internal/platform/errors"

	"github.com/go-playground/validator/v10"
)

// Mode tags a spec as structured (numeric + categorical) or text
type Mode string

const (
	// ModeStructured reads numeric and categorical columns
	ModeStructured Mode = "structured"
	// ModeText reads a single free text column
	ModeText Mode = "text"
)

// Purpose selects which column set RequiredColumns returns
type Purpose int

const (
	// ForInference excludes the label column
	ForInference Purpose = iota
	// ForTraining includes the label column last
	ForTraining
)

// DefaultPredictionColumn is appended to scored batches when a spec does not name one
const DefaultPredictionColumn = "Prediction"

// Spec is the declarative contract for one task. Build it with New; the zero value is not usable
type Spec struct {
	Task             string         `json:"task" validate:"required,taskid"`
	Numeric          []string       `json:"numeric,omitempty"`
	Categorical      []string       `json:"categorical,omitempty"`
	Text             string         `json:"text,omitempty"`
	Label            string         `json:"label" validate:"required"`
	LabelEncoding    map[string]int `json:"label_encoding" validate:"required"`
	DisplayEncoding  map[int]string `json:"display_encoding" validate:"required"`
	PredictionColumn string         `json:"prediction_column,omitempty"`

	// text mode knobs
	MaxVocabulary int  `json:"max_vocabulary,omitempty" validate:"gte=0"`
	StopWords     bool `json:"stop_words,omitempty"`

	// Title is the human name shown by the UI shell
	Title string `json:"title,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("taskid", func(fl validator.FieldLevel) bool {
		return ValidTaskID(fl.Field().String())
	})
	return v
}

// ValidTaskID reports whether s is usable as a storage key: lowercase, starts with a letter,
// then letters, digits, '-' or '_'
func ValidTaskID(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '_'):
		default:
			return false
		}
	}
	return true
}

// New validates in and returns an immutable copy
func New(in Spec) (*Spec, error) {
	s := in.clone()
	s.Task = strings.TrimSpace(s.Task)
	s.Label = strings.TrimSpace(s.Label)
	s.Text = strings.TrimSpace(s.Text)
	s.PredictionColumn = strings.TrimSpace(s.PredictionColumn)
	if s.PredictionColumn == "" {
		s.PredictionColumn = DefaultPredictionColumn
	}

	if err := validate.Struct(s); err != nil {
		return nil, perr.WithOp(perr.InvalidSpecf("task %q: %v", s.Task, err), "featurespec.New")
	}
	if err := s.check(); err != nil {
		return nil, perr.WithOp(err, "featurespec.New")
	}
	return s, nil
}

// MustNew is New for package level catalogs; it panics on an invalid spec
func MustNew(in Spec) *Spec {
	s, err := New(in)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Spec) check() error {
	structured := len(s.Numeric) > 0 || len(s.Categorical) > 0
	if !structured && s.Text == "" {
		return perr.InvalidSpecf("task %q declares no feature columns", s.Task)
	}
	if structured && s.Text != "" {
		return perr.InvalidSpecf("task %q mixes structured fields with text field %q", s.Task, s.Text)
	}

	seen := make(map[string]string, len(s.Numeric)+len(s.Categorical)+1)
	claim := func(group, name string) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return perr.InvalidSpecf("task %q has a blank %s field", s.Task, group)
		}
		if prev, ok := seen[name]; ok {
			return perr.WithField(
				perr.InvalidSpecf("task %q declares %q as both %s and %s", s.Task, name, prev, group),
				name,
			)
		}
		seen[name] = group
		return nil
	}
	for _, f := range s.Numeric {
		if err := claim("numeric", f); err != nil {
			return err
		}
	}
	for _, f := range s.Categorical {
		if err := claim("categorical", f); err != nil {
			return err
		}
	}
	if s.Text != "" {
		if err := claim("text", s.Text); err != nil {
			return err
		}
	}
	if _, ok := seen[s.Label]; ok {
		return perr.WithField(perr.InvalidSpecf("task %q uses label %q as a feature", s.Task, s.Label), s.Label)
	}
	if _, ok := seen[s.PredictionColumn]; ok || s.PredictionColumn == s.Label {
		return perr.WithField(
			perr.InvalidSpecf("task %q prediction column %q collides with an input column", s.Task, s.PredictionColumn),
			"prediction_column",
		)
	}

	if !binaryValues(s.LabelEncoding) {
		return perr.WithField(
			perr.InvalidSpecf("task %q label encoding must map onto exactly {0,1}", s.Task),
			"label_encoding",
		)
	}
	if len(s.DisplayEncoding) != 2 || s.DisplayEncoding[0] == "" || s.DisplayEncoding[1] == "" {
		return perr.WithField(
			perr.InvalidSpecf("task %q display encoding must name both 0 and 1", s.Task),
			"display_encoding",
		)
	}
	if s.Text == "" && (s.MaxVocabulary != 0 || s.StopWords) {
		return perr.InvalidSpecf("task %q sets text options without a text field", s.Task)
	}
	return nil
}

func binaryValues(m map[string]int) bool {
	var zero, one bool
	for _, v := range m {
		switch v {
		case 0:
			zero = true
		case 1:
			one = true
		default:
			return false
		}
	}
	return zero && one
}

func (s Spec) clone() *Spec {
	c := s
	c.Numeric = slices.Clone(s.Numeric)
	c.Categorical = slices.Clone(s.Categorical)
	c.LabelEncoding = make(map[string]int, len(s.LabelEncoding))
	for k, v := range s.LabelEncoding {
		c.LabelEncoding[k] = v
	}
	c.DisplayEncoding = make(map[int]string, len(s.DisplayEncoding))
	for k, v := range s.DisplayEncoding {
		c.DisplayEncoding[k] = v
	}
	return &c
}

// Clone returns a deep copy callers may mutate freely
func (s *Spec) Clone() Spec { return *s.clone() }

// Mode reports whether the task is structured or text
func (s *Spec) Mode() Mode {
	if s.Text != "" {
		return ModeText
	}
	return ModeStructured
}

// NumericFields returns a copy of the numeric column names
func (s *Spec) NumericFields() []string { return slices.Clone(s.Numeric) }

// CategoricalFields returns a copy of the categorical column names
func (s *Spec) CategoricalFields() []string { return slices.Clone(s.Categorical) }

// RequiredColumns returns features in declaration order (numeric, categorical, text), with the
// label appended for training
func (s *Spec) RequiredColumns(p Purpose) []string {
	out := make([]string, 0, len(s.Numeric)+len(s.Categorical)+2)
	out = append(out, s.Numeric...)
	out = append(out, s.Categorical...)
	if s.Text != "" {
		out = append(out, s.Text)
	}
	if p == ForTraining {
		out = append(out, s.Label)
	}
	return out
}

// EncodeLabel maps a raw label to 0 or 1
func (s *Spec) EncodeLabel(raw string) (int, error) {
	if v, ok := s.LabelEncoding[strings.TrimSpace(raw)]; ok {
		return v, nil
	}
	return 0, perr.WithField(
		perr.UnknownLabelf("task %q: label %q is not one of %s", s.Task, raw, strings.Join(s.LabelDomain(), ", ")),
		s.Label,
	)
}

// LabelDomain returns the accepted raw label values, sorted
func (s *Spec) LabelDomain() []string {
	out := make([]string, 0, len(s.LabelEncoding))
	for k := range s.LabelEncoding {
		out = append(out, strconv.Quote(k))
	}
	sort.Strings(out)
	return out
}

// Display maps a model output to its human label
func (s *Spec) Display(class int) string {
	if v, ok := s.DisplayEncoding[class]; ok {
		return v
	}
	return strconv.Itoa(class)
}
