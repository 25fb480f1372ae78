package featurespec

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	perr "predictkit/internal/platform/errors"
)

var (
	loan = MustNew(Spec{
		Task:            "loan",
		Title:           "Loan Default Risk",
		Numeric:         []string{"income", "loan_amount"},
		Categorical:     []string{"purpose"},
		Label:           "loan_status",
		LabelEncoding:   map[string]int{"Charged Off": 1, "Fully Paid": 0},
		DisplayEncoding: map[int]string{1: "Charged Off", 0: "Fully Paid"},
	})

	churn = MustNew(Spec{
		Task:    "churn",
		Title:   "Customer Churn",
		Numeric: []string{"tenure", "MonthlyCharges", "TotalCharges"},
		Categorical: []string{
			"gender", "SeniorCitizen", "Partner", "Dependents", "PhoneService",
			"InternetService", "Contract", "PaymentMethod",
		},
		Label:            "Churn",
		LabelEncoding:    map[string]int{"Yes": 1, "No": 0},
		DisplayEncoding:  map[int]string{1: "Yes", 0: "No"},
		PredictionColumn: "ChurnPrediction",
	})

	spam = MustNew(Spec{
		Task:            "spam",
		Title:           "Email Spam Detection",
		Text:            "EmailContent",
		Label:           "IsSpam",
		LabelEncoding:   map[string]int{"1": 1, "0": 0},
		DisplayEncoding: map[int]string{1: "Spam", 0: "Not Spam"},
		MaxVocabulary:   500,
		StopWords:       true,
	})

	attrition = MustNew(Spec{
		Task:  "attrition",
		Title: "Employee Attrition",
		Numeric: []string{
			"Age", "Education", "JobSatisfaction", "MonthlyIncome", "TotalWorkingYears", "YearsAtCompany",
		},
		Categorical:     []string{"Department", "JobRole", "MaritalStatus", "OverTime"},
		Label:           "Attrition",
		LabelEncoding:   map[string]int{"Yes": 1, "No": 0},
		DisplayEncoding: map[int]string{1: "Attrition", 0: "Retained"},
	})
)

// Loan returns a private copy of the built-in loan default task
func Loan() *Spec { return loan.clone() }

// Churn returns a private copy of the built-in customer churn task
func Churn() *Spec { return churn.clone() }

// Spam returns a private copy of the built-in email spam task
func Spam() *Spec { return spam.clone() }

// Attrition returns a private copy of the built-in employee attrition task
func Attrition() *Spec { return attrition.clone() }

// Catalog is a registry of validated specs keyed by task id
type Catalog struct {
	mu    sync.RWMutex
	specs map[string]*Spec
}

// NewCatalog returns a catalog holding copies of the given specs
func NewCatalog(specs ...*Spec) *Catalog {
	c := &Catalog{specs: make(map[string]*Spec, len(specs))}
	for _, s := range specs {
		c.specs[s.Task] = s.clone()
	}
	return c
}

// Default returns a catalog with the four built-in tasks
func Default() *Catalog { return NewCatalog(loan, churn, spam, attrition) }

// Register adds or replaces a spec
func (c *Catalog) Register(s *Spec) error {
	if s == nil {
		return perr.InvalidSpecf("nil spec")
	}
	// re-validate in case the caller built the struct by hand
	v, err := New(s.Clone())
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.specs[v.Task] = v
	c.mu.Unlock()
	return nil
}

// Lookup returns a copy of the spec for task or a not found error. Catalog
// entries never change through the returned value
func (c *Catalog) Lookup(task string) (*Spec, error) {
	c.mu.RLock()
	s, ok := c.specs[task]
	c.mu.RUnlock()
	if !ok {
		return nil, perr.WithField(perr.NotFoundf("unknown task %q", task), "task")
	}
	return s.clone(), nil
}

// Tasks returns the registered task ids, sorted
func (c *Catalog) Tasks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.specs))
	for k := range c.specs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadFile reads a JSON array (or single object) of specs and registers each
func (c *Catalog) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("featurespec: read %s: %w", path, err)
	}
	var many []Spec
	if err := json.Unmarshal(b, &many); err != nil {
		var one Spec
		if err2 := json.Unmarshal(b, &one); err2 != nil {
			return perr.Wrapf(err, perr.ErrorCodeInvalidSpec, "decode %s", path)
		}
		many = []Spec{one}
	}
	for _, s := range many {
		v, err := New(s)
		if err != nil {
			return err
		}
		c.mu.Lock()
		c.specs[v.Task] = v
		c.mu.Unlock()
	}
	return nil
}
