package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"predictkit/internal/core/estimator"
	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/pipeline"
	"predictkit/internal/core/preprocess"
	"predictkit/internal/core/table"
	perr "predictkit/internal/platform/errors"
	"predictkit/internal/platform/testkit"
	"predictkit/internal/services/artifacts/domain"

	"github.com/google/uuid"
)

func loanArtifact(t *testing.T, kind estimator.Kind) domain.Artifact {
	t.Helper()
	var b strings.Builder
	b.WriteString("income,loan_amount,purpose,loan_status\n")
	var y []int
	for i := 0; i < 40; i++ {
		if i%4 == 0 {
			fmt.Fprintf(&b, "%d,%d,car,Charged Off\n", 1000+i*10, 5000+i*7)
			y = append(y, 1)
		} else {
			fmt.Fprintf(&b, "%d,%d,home,Fully Paid\n", 6000+i*10, 1000+i*7)
			y = append(y, 0)
		}
	}
	tb, err := table.ReadCSV(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	tr, err := preprocess.Fit(tb, featurespec.Loan())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	X, _ := tr.Apply(tb)
	c, _ := estimator.New(kind, estimator.Options{Seed: 7, Trees: 8})
	if err := c.Fit(X, y, nil); err != nil {
		t.Fatalf("Fit classifier: %v", err)
	}
	p, err := pipeline.New(tr, c)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return domain.Artifact{
		Key:      domain.Key{Task: "loan", Model: kind},
		Spec:     featurespec.Loan(),
		Pipeline: p,
		Meta: domain.Meta{
			RunID:     uuid.New(),
			TrainedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			TrainRows: 32,
			TestRows:  8,
			Seed:      7,
		},
	}
}

func probe(t *testing.T) *table.Table {
	t.Helper()
	tb, err := table.ReadCSV(strings.NewReader("purpose,loan_amount,income\ncar,5100,1100\nhome,1200,6400\nboat,3000,3000\n"))
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	return tb
}

func TestFS_RoundTripPredictions(t *testing.T) {
	ctx := context.Background()
	s, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	for _, kind := range estimator.Kinds() {
		a := loanArtifact(t, kind)
		want, err := a.Pipeline.Predict(probe(t))
		if err != nil {
			t.Fatalf("%s predict: %v", kind, err)
		}
		if err := s.Save(ctx, a); err != nil {
			t.Fatalf("%s save: %v", kind, err)
		}
		got, err := s.Load(ctx, a.Key)
		if err != nil {
			t.Fatalf("%s load: %v", kind, err)
		}
		pred, err := got.Pipeline.Predict(probe(t))
		if err != nil {
			t.Fatalf("%s predict loaded: %v", kind, err)
		}
		if !reflect.DeepEqual(want, pred) {
			t.Fatalf("%s predictions drifted: %v vs %v", kind, want, pred)
		}
		if got.Meta.RunID != a.Meta.RunID || got.Spec.Task != "loan" {
			t.Fatalf("%s meta lost: %+v", kind, got.Meta)
		}
	}

	if _, err := os.Stat(s.FeaturesPath("loan")); err != nil {
		t.Fatalf("features copy missing: %v", err)
	}
}

func TestFS_NotFoundVersusCorrupt(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFS(t.TempDir())
	k := domain.Key{Task: "loan", Model: estimator.KindRandomForest}

	_, err := s.Load(ctx, k)
	testkit.MustCode(t, err, perr.ErrorCodeArtifactNotFound)
	testkit.MustContain(t, err.Error(), "run training first")

	if err := os.MkdirAll(filepath.Dir(s.ModelPath(k)), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.ModelPath(k), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = s.Load(ctx, k)
	testkit.MustCode(t, err, perr.ErrorCodeArtifactCorrupt)
	testkit.MustContain(t, err.Error(), "retrain")
}

func TestFS_MismatchedPairIsCorrupt(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFS(t.TempDir())
	a := loanArtifact(t, estimator.KindLogisticRegression)
	if err := s.Save(ctx, a); err != nil {
		t.Fatalf("save: %v", err)
	}

	// a document copied under another model name no longer matches its key
	other := domain.Key{Task: "loan", Model: estimator.KindGradientBoosting}
	b, _ := os.ReadFile(s.ModelPath(a.Key))
	if err := os.WriteFile(s.ModelPath(other), b, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, other); !perr.IsCode(err, perr.ErrorCodeArtifactCorrupt) {
		t.Fatalf("want corrupt, got %v", err)
	}

	// spec swapped for another task's spec
	doc := strings.Replace(string(b), `"income","loan_amount"`, `"income","amount"`, 1)
	if err := os.WriteFile(s.ModelPath(a.Key), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(ctx, a.Key); !perr.IsCode(err, perr.ErrorCodeArtifactCorrupt) {
		t.Fatalf("want corrupt after spec edit, got %v", err)
	}
}

func TestFS_OverwriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s, _ := NewFS(root)
	first := loanArtifact(t, estimator.KindRandomForest)
	second := loanArtifact(t, estimator.KindRandomForest)
	for _, a := range []domain.Artifact{first, second} {
		if err := s.Save(ctx, a); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	got, err := s.Load(ctx, first.Key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Meta.RunID != second.Meta.RunID {
		t.Fatalf("overwrite lost: run %s", got.Meta.RunID)
	}
	ents, _ := os.ReadDir(filepath.Join(root, "loan"))
	for _, e := range ents {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFS_SaveRejectsUnmatchedArtifact(t *testing.T) {
	s, _ := NewFS(t.TempDir())
	a := loanArtifact(t, estimator.KindLogisticRegression)
	a.Spec = featurespec.Churn()
	a.Task = "churn"
	if err := s.Save(context.Background(), a); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
	if _, err := os.Stat(s.ModelPath(a.Key)); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written, stat err=%v", err)
	}
}

func TestFS_List(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFS(t.TempDir())

	refs, err := s.List(ctx, "loan")
	if err != nil || len(refs) != 0 {
		t.Fatalf("empty list: %v %v", refs, err)
	}

	rf := loanArtifact(t, estimator.KindRandomForest)
	rf.Meta.Best = true
	lr := loanArtifact(t, estimator.KindLogisticRegression)
	for _, a := range []domain.Artifact{rf, lr} {
		if err := s.Save(ctx, a); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	// junk next to the artifacts is ignored
	_ = os.WriteFile(filepath.Join(s.Root(), "loan", "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(s.Root(), "loan", "bogus_model.json"), []byte("{}"), 0o644)

	refs, err = s.List(ctx, "loan")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(refs) != 2 || refs[0].Model != estimator.KindLogisticRegression || refs[1].Model != estimator.KindRandomForest {
		t.Fatalf("refs=%+v", refs)
	}
	if !refs[1].Best || refs[0].Best {
		t.Fatalf("best flag wrong: %+v", refs)
	}
}

func TestFS_PingAndEmptyRoot(t *testing.T) {
	if _, err := NewFS("  "); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
	s, _ := NewFS(t.TempDir())
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
