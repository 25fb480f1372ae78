package preprocess

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"
	"testing"

	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/table"
	perr "predictkit/internal/platform/errors"
	"predictkit/internal/platform/testkit"
)

func mustTable(t *testing.T, doc string) *table.Table {
	t.Helper()
	tb, err := table.ReadCSV(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tb
}

const loanTrain = `income,loan_amount,purpose,loan_status
1000,100,car,Fully Paid
2000,200,home,Charged Off
3000,300,car,Fully Paid
,400,edu,Fully Paid
`

func TestFit_Structured(t *testing.T) {
	tr, err := Fit(mustTable(t, loanTrain), featurespec.Loan())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	inc := tr.Numeric[0]
	if inc.Median != 2000 {
		t.Fatalf("median=%v", inc.Median)
	}
	// filled column is 1000,2000,3000,2000
	if inc.Mean != 2000 {
		t.Fatalf("mean=%v", inc.Mean)
	}
	if want := math.Sqrt(500000); math.Abs(inc.Std-want) > 1e-9 {
		t.Fatalf("std=%v want %v", inc.Std, want)
	}
	if !slices.Equal(tr.Categorical[0].Categories, []string{"car", "edu", "home"}) {
		t.Fatalf("categories=%v", tr.Categorical[0].Categories)
	}
	want := []string{"income", "loan_amount", "purpose=car", "purpose=edu", "purpose=home"}
	if got := tr.FeatureNames(); !slices.Equal(got, want) {
		t.Fatalf("names=%v", got)
	}
	if tr.Width() != 5 {
		t.Fatalf("width=%d", tr.Width())
	}
}

func TestApply_DeterministicAndOrderIndependent(t *testing.T) {
	tr, err := Fit(mustTable(t, loanTrain), featurespec.Loan())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	a := mustTable(t, "income,loan_amount,purpose\n2000,250,home\n1500,100,car\n")
	b := mustTable(t, "purpose,extra,loan_amount,income\nhome,x,250,2000\ncar,y,100,1500\n")

	xa, err := tr.Apply(a)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	xa2, _ := tr.Apply(a)
	xb, err := tr.Apply(b)
	if err != nil {
		t.Fatalf("Apply reordered: %v", err)
	}
	if !reflect.DeepEqual(xa, xa2) {
		t.Fatalf("Apply not deterministic")
	}
	if !reflect.DeepEqual(xa, xb) {
		t.Fatalf("column order changed output:\n%v\n%v", xa, xb)
	}
	if xa[0][0] != 0 || xa[0][4] != 1 || xa[0][2] != 0 {
		t.Fatalf("row0=%v", xa[0])
	}
}

func TestApply_NoRefit(t *testing.T) {
	tr, _ := Fit(mustTable(t, loanTrain), featurespec.Loan())
	before := tr.Numeric[0]
	// a batch with a very different distribution must be scaled with training stats
	x, err := tr.Apply(mustTable(t, "income,loan_amount,purpose\n1000000,1,car\n1000000,1,car\n"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if tr.Numeric[0] != before {
		t.Fatalf("Apply mutated the transform")
	}
	if want := (1000000 - before.Mean) / before.Std; x[0][0] != want {
		t.Fatalf("scaled=%v want %v", x[0][0], want)
	}
}

func TestApply_UnseenCategoryAndBlankNumeric(t *testing.T) {
	tr, _ := Fit(mustTable(t, loanTrain), featurespec.Loan())
	x, err := tr.Apply(mustTable(t, "income,loan_amount,purpose\n,300,boat\nabc,300,car\n"))
	if err != nil {
		t.Fatalf("unseen category raised: %v", err)
	}
	for j := 2; j < 5; j++ {
		if x[0][j] != 0 {
			t.Fatalf("unseen category not all-zero: %v", x[0])
		}
	}
	// blank and unparseable both take the training median, which scales to 0 here
	if x[0][0] != 0 || x[1][0] != 0 {
		t.Fatalf("median fill wrong: %v %v", x[0][0], x[1][0])
	}
}

func TestApply_SchemaMismatch(t *testing.T) {
	tr, _ := Fit(mustTable(t, loanTrain), featurespec.Loan())
	x, err := tr.Apply(mustTable(t, "income,other\n1,2\n"))
	if !perr.IsCode(err, perr.ErrorCodeSchemaMismatch) {
		t.Fatalf("want schema mismatch, got %v", err)
	}
	if x != nil {
		t.Fatalf("partial output returned")
	}
	testkit.MustContain(t, err.Error(), "loan_amount, purpose")
}

func TestFit_ConstantColumn(t *testing.T) {
	tr, err := Fit(mustTable(t, "income,loan_amount,purpose,loan_status\n5,1,a,Fully Paid\n5,2,a,Charged Off\n"), featurespec.Loan())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if tr.Numeric[0].Std != 1 {
		t.Fatalf("zero variance std=%v", tr.Numeric[0].Std)
	}
}

func TestFit_Errors(t *testing.T) {
	if _, err := Fit(mustTable(t, "income\n1\n"), featurespec.Loan()); !perr.IsCode(err, perr.ErrorCodeSchemaMismatch) {
		t.Fatalf("missing columns: %v", err)
	}
	if _, err := Fit(mustTable(t, "income,loan_amount,purpose\n"), featurespec.Loan()); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty table: %v", err)
	}
}

func TestText_VocabularyCapAndIDF(t *testing.T) {
	var b strings.Builder
	b.WriteString("EmailContent,IsSpam\n")
	// 600 distinct terms plus a shared one
	for i := 0; i < 600; i++ {
		fmt.Fprintf(&b, "\"offer term%03d\",%d\n", i, i%2)
	}
	tr, err := Fit(mustTable(t, b.String()), featurespec.Spam())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if n := len(tr.Text.Vocabulary); n != 500 {
		t.Fatalf("vocabulary=%d want 500", n)
	}
	if !slices.IsSorted(tr.Text.Vocabulary) {
		t.Fatalf("vocabulary not sorted")
	}
	i := slices.Index(tr.Text.Vocabulary, "offer")
	if i < 0 {
		t.Fatalf("most frequent term dropped")
	}
	// offer appears in every doc: idf = ln(601/601)+1
	if tr.Text.IDF[i] != 1 {
		t.Fatalf("idf(offer)=%v", tr.Text.IDF[i])
	}
	// ties at tf=1 are broken lexicographically so term000..term498 survive
	if !slices.Contains(tr.Text.Vocabulary, "term498") || slices.Contains(tr.Text.Vocabulary, "term499") {
		t.Fatalf("tie break wrong")
	}
}

func TestText_ApplyIdenticalDocs(t *testing.T) {
	train := mustTable(t, "EmailContent,IsSpam\n\"win a free prize now\",1\n\"meeting notes attached\",0\n\"free prize claim\",1\n\"lunch meeting today\",0\n")
	tr, err := Fit(train, featurespec.Spam())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if slices.Contains(tr.Text.Vocabulary, "a") || slices.Contains(tr.Text.Vocabulary, "now") {
		t.Fatalf("stop words kept: %v", tr.Text.Vocabulary)
	}
	x, err := tr.Apply(mustTable(t, "EmailContent\n\"FREE prize!!\"\n\"free   prize\"\n\"unknown words only\"\n"))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !reflect.DeepEqual(x[0], x[1]) {
		t.Fatalf("identical content differs: %v %v", x[0], x[1])
	}
	var norm float64
	for _, v := range x[0] {
		norm += v * v
	}
	if math.Abs(norm-1) > 1e-12 {
		t.Fatalf("row not l2 normalised: %v", norm)
	}
	for _, v := range x[2] {
		if v != 0 {
			t.Fatalf("oov doc should be zero: %v", x[2])
		}
	}
}

func TestTransform_JSONRoundTrip(t *testing.T) {
	tr, _ := Fit(mustTable(t, loanTrain), featurespec.Loan())
	raw, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Transform
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	probe := mustTable(t, "income,loan_amount,purpose\n2500,150,home\n,10,zzz\n")
	a, _ := tr.Apply(probe)
	b, err := back.Apply(probe)
	if err != nil || !reflect.DeepEqual(a, b) {
		t.Fatalf("round trip changed output: %v", err)
	}
	if !back.Matches(featurespec.Loan()) || back.Matches(featurespec.Churn()) {
		t.Fatalf("Matches wrong")
	}

	var broken Transform
	_ = json.Unmarshal([]byte(`{"task":"spam","mode":"text"}`), &broken)
	if _, err := broken.Apply(probe); !perr.IsCode(err, perr.ErrorCodeArtifactCorrupt) {
		t.Fatalf("incomplete transform: %v", err)
	}
}
