package table

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	perr "predictkit/internal/platform/errors"
	"predictkit/internal/platform/testkit"
)

const sample = "\uFEFFincome, purpose ,loan_amount\n5000,car,1200\n7000,\"home, big\",3000\n,edu,800\n"

func TestReadCSV(t *testing.T) {
	tb, err := ReadCSV(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !slices.Equal(tb.Header, []string{"income", "purpose", "loan_amount"}) {
		t.Fatalf("header=%q", tb.Header)
	}
	if tb.Len() != 3 {
		t.Fatalf("rows=%d", tb.Len())
	}
	if tb.Rows[1][1] != "home, big" {
		t.Fatalf("quoted field=%q", tb.Rows[1][1])
	}
}

func TestReadCSV_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "empty"},
		{"ragged", "a,b\n1,2\n3\n", "wrong number of fields"},
		{"duplicate header", "a,a\n1,2\n", "duplicate column"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.in))
			if !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("code=%v err=%v", perr.CodeOf(err), err)
			}
			testkit.MustContain(t, err.Error(), tc.want)
		})
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	tb, _ := ReadCSV(strings.NewReader(sample))
	var buf bytes.Buffer
	if err := tb.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	again, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if !slices.Equal(again.Header, tb.Header) || again.Rows[1][1] != "home, big" {
		t.Fatalf("round trip mismatch: %+v", again)
	}
}

func TestProjectAndMissing(t *testing.T) {
	tb, _ := ReadCSV(strings.NewReader(sample))
	p, err := tb.Project([]string{"loan_amount", "income"})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if !slices.Equal(p.Header, []string{"loan_amount", "income"}) || p.Rows[0][0] != "1200" {
		t.Fatalf("projection=%+v", p)
	}

	miss := tb.Missing([]string{"zip", "income", "age"})
	if !slices.Equal(miss, []string{"zip", "age"}) {
		t.Fatalf("missing=%v", miss)
	}
	_, err = tb.Project([]string{"zip", "age"})
	if !perr.IsCode(err, perr.ErrorCodeSchemaMismatch) {
		t.Fatalf("want schema mismatch, got %v", err)
	}
	testkit.MustContain(t, err.Error(), "zip, age")
}

func TestWithColumn_DoesNotMutate(t *testing.T) {
	tb, _ := ReadCSV(strings.NewReader(sample))
	out, err := tb.WithColumn("Prediction", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	if len(tb.Header) != 3 || len(tb.Rows[0]) != 3 {
		t.Fatalf("receiver mutated")
	}
	if out.Header[3] != "Prediction" || out.Rows[2][3] != "c" || out.Rows[2][1] != "edu" {
		t.Fatalf("augmented=%+v", out)
	}

	rep, err := out.WithColumn("Prediction", []string{"x", "y", "z"})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(rep.Header) != 4 || rep.Rows[0][3] != "x" || out.Rows[0][3] != "a" {
		t.Fatalf("replace=%+v", rep)
	}

	if _, err := tb.WithColumn("p", []string{"only one"}); err == nil {
		t.Fatalf("expected length error")
	}
}

func TestHeadDropRecords(t *testing.T) {
	tb, _ := ReadCSV(strings.NewReader(sample))
	if tb.Head(2).Len() != 2 || tb.Head(10).Len() != 3 || tb.Head(-1).Len() != 3 {
		t.Fatalf("head sizes wrong")
	}

	d := tb.DropIncomplete([]string{"income", "purpose"})
	if d.Len() != 2 {
		t.Fatalf("drop kept %d rows", d.Len())
	}

	recs := tb.Records()
	if recs[2]["purpose"] != "edu" || recs[2]["income"] != "" {
		t.Fatalf("records=%v", recs)
	}
	back, err := FromRecords(tb.Header, recs)
	if err != nil || !slices.Equal(back.Rows[1], tb.Rows[1]) {
		t.Fatalf("FromRecords: %v %+v", err, back)
	}

	sorted, err := FromRecords(nil, []map[string]string{{"b": "1"}, {"a": "2"}})
	if err != nil {
		t.Fatalf("FromRecords union: %v", err)
	}
	if !slices.Equal(sorted.Header, []string{"a", "b"}) || sorted.Rows[0][0] != "" || sorted.Rows[1][0] != "2" {
		t.Fatalf("union=%+v", sorted)
	}

	cols := []string{"b"}
	mixed, err := FromRecords(cols, []map[string]string{{"b": "1", "z": "9"}, {"a": "2"}})
	if err != nil {
		t.Fatalf("FromRecords extra keys: %v", err)
	}
	if !slices.Equal(mixed.Header, []string{"b", "a", "z"}) || !slices.Equal(mixed.Rows[0], []string{"1", "", "9"}) {
		t.Fatalf("extra keys=%+v", mixed)
	}
	if len(cols) != 1 {
		t.Fatalf("caller header modified: %v", cols)
	}

	col, ok := tb.Column("loan_amount")
	if !ok || !slices.Equal(col, []string{"1200", "3000", "800"}) {
		t.Fatalf("column=%v", col)
	}
}
