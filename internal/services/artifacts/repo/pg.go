package repo

import (
	"context"
	"errors"
	"time"

	"predictkit/internal/core/estimator"
	"predictkit/internal/modkit/repokit"
	perr "predictkit/internal/platform/errors"
	"predictkit/internal/platform/store"
	"predictkit/internal/services/artifacts/domain"

	"github.com/google/uuid"
)

// Schema creates the artifacts table; Migrate runs it
const Schema = `CREATE TABLE IF NOT EXISTS model_artifacts (
	task        text             NOT NULL,
	model       text             NOT NULL,
	document    jsonb            NOT NULL,
	run_id      uuid             NOT NULL,
	trained_at  timestamptz      NOT NULL,
	macro_f1    double precision NOT NULL DEFAULT 0,
	best        boolean          NOT NULL DEFAULT false,
	updated_at  timestamptz      NOT NULL DEFAULT now(),
	PRIMARY KEY (task, model)
)`

// PG keeps one row per key; Save is an upsert inside a transaction so readers see the old
// or the new document
type PG struct {
	tx repokit.TxRunner
}

// NewPG binds the store to a transaction runner
func NewPG(tx repokit.TxRunner) *PG { return &PG{tx: tx} }

// Migrate creates the table if missing
func (s *PG) Migrate(ctx context.Context) error {
	_, err := s.tx.Exec(ctx, Schema)
	return perr.FromPostgres(err, "artifacts: migrate")
}

// Save upserts the artifact document
func (s *PG) Save(ctx context.Context, a domain.Artifact) error {
	doc, err := domain.Encode(a)
	if err != nil {
		return err
	}
	err = repokit.WithTx(ctx, s.tx, func(q repokit.Queryer) error {
		return store.ExecOne(ctx, q, `
			INSERT INTO model_artifacts (task, model, document, run_id, trained_at, macro_f1, best, updated_at)
			VALUES ($1, $2, $3::jsonb, $4, $5, $6, $7, now())
			ON CONFLICT (task, model) DO UPDATE SET
				document = EXCLUDED.document,
				run_id = EXCLUDED.run_id,
				trained_at = EXCLUDED.trained_at,
				macro_f1 = EXCLUDED.macro_f1,
				best = EXCLUDED.best,
				updated_at = now()`,
			a.Task, string(a.Model), string(doc), a.Meta.RunID, a.Meta.TrainedAt, a.Meta.Metrics.Macro.F1, a.Meta.Best,
		)
	})
	return perr.FromPostgres(err, "artifacts: save "+a.Key.String())
}

// Load fetches and validates the artifact for k
func (s *PG) Load(ctx context.Context, k domain.Key) (domain.Artifact, error) {
	doc, err := store.One(ctx, s.tx, func(r store.Row) (string, error) {
		var d string
		return d, r.Scan(&d)
	}, `SELECT document::text FROM model_artifacts WHERE task = $1 AND model = $2`, k.Task, string(k.Model))
	if errors.Is(err, perr.ErrNotFound) {
		return domain.Artifact{}, notFound(k)
	}
	if err != nil {
		return domain.Artifact{}, perr.FromPostgres(err, "artifacts: load "+k.String())
	}
	return domain.Decode(k, []byte(doc))
}

// List returns stored refs for task, sorted by model
func (s *PG) List(ctx context.Context, task string) ([]domain.Ref, error) {
	refs, err := store.Many(ctx, s.tx, func(r store.Row) (domain.Ref, error) {
		var (
			ref   domain.Ref
			model string
			runID uuid.UUID
			at    time.Time
		)
		if err := r.Scan(&ref.Task, &model, &runID, &at, &ref.MacroF1, &ref.Best); err != nil {
			return ref, err
		}
		ref.Model, ref.RunID, ref.TrainedAt = estimator.Kind(model), runID, at
		return ref, nil
	}, `SELECT task, model, run_id, trained_at, macro_f1, best
		FROM model_artifacts WHERE task = $1 ORDER BY model`, task)
	if err != nil {
		return nil, perr.FromPostgres(err, "artifacts: list "+task)
	}
	return refs, nil
}

// Ping checks the database answers
func (s *PG) Ping(ctx context.Context) error {
	if p, ok := s.tx.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := store.Scalar[int](ctx, s.tx, "SELECT 1")
	return err
}

var _ domain.StorePort = (*PG)(nil)
