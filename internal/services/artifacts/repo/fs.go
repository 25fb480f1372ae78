// Package repo provides the filesystem and Postgres artifact stores
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"predictkit/internal/core/estimator"
	perr "predictkit/internal/platform/errors"
	"predictkit/internal/services/artifacts/domain"
)

const (
	modelSuffix    = "_model.json"
	featuresSuffix = "_features.json"
)

// FS stores one JSON document per key at <root>/<task>/<model>_model.json, plus a
// human readable <root>/<task>/<task>_features.json holding the last saved spec
type FS struct {
	root string
}

// NewFS creates root if needed
func NewFS(root string) (*FS, error) {
	if strings.TrimSpace(root) == "" {
		return nil, perr.InvalidArgf("artifacts: empty root directory")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "artifacts: create %s", root)
	}
	return &FS{root: root}, nil
}

// Root returns the base directory
func (s *FS) Root() string { return s.root }

// ModelPath is where the artifact for k lives
func (s *FS) ModelPath(k domain.Key) string {
	return filepath.Join(s.root, k.Task, string(k.Model)+modelSuffix)
}

// FeaturesPath is where the spec copy for task lives
func (s *FS) FeaturesPath(task string) string {
	return filepath.Join(s.root, task, task+featuresSuffix)
}

// Save writes the document then the features copy, each through a temp file and rename
func (s *FS) Save(ctx context.Context, a domain.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := domain.Encode(a)
	if err != nil {
		return err
	}
	dir := filepath.Join(s.root, a.Task)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "artifacts: create %s", dir)
	}
	if err := writeAtomic(s.ModelPath(a.Key), doc); err != nil {
		return err
	}
	features, err := json.MarshalIndent(a.Spec, "", "  ")
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "artifacts: encode features")
	}
	return writeAtomic(s.FeaturesPath(a.Task), features)
}

// writeAtomic replaces path with data; the temp file is removed on every failure path
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "artifacts: temp file in %s", dir)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "artifacts: write %s", tmp)
	}
	if err = f.Sync(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "artifacts: sync %s", tmp)
	}
	if err = f.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "artifacts: close %s", tmp)
	}
	if err = os.Rename(tmp, path); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "artifacts: rename into %s", path)
	}
	// persist the rename itself; not every platform supports syncing a directory
	if d, derr := os.Open(dir); derr == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Load reads and validates the artifact for k
func (s *FS) Load(ctx context.Context, k domain.Key) (domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, err
	}
	b, err := os.ReadFile(s.ModelPath(k))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Artifact{}, notFound(k)
	}
	if err != nil {
		return domain.Artifact{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "artifacts: read %s", k)
	}
	return domain.Decode(k, b)
}

// List returns the artifacts stored for task, sorted by model. Unreadable documents are skipped
func (s *FS) List(ctx context.Context, task string) ([]domain.Ref, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ents, err := os.ReadDir(filepath.Join(s.root, task))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "artifacts: list %s", task)
	}
	var out []domain.Ref
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, modelSuffix) {
			continue
		}
		kind, err := estimator.ParseKind(strings.TrimSuffix(name, modelSuffix))
		if err != nil {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.root, task, name))
		if err != nil {
			continue
		}
		meta, err := domain.DecodeMeta(b)
		if err != nil {
			continue
		}
		out = append(out, domain.Ref{
			Key: domain.Key{Task: task, Model: kind}, RunID: meta.RunID, TrainedAt: meta.TrainedAt,
			MacroF1: meta.Metrics.Macro.F1, Best: meta.Best,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out, nil
}

// Ping checks the root is still a readable directory
func (s *FS) Ping(context.Context) error {
	fi, err := os.Stat(s.root)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "artifacts: stat %s", s.root)
	}
	if !fi.IsDir() {
		return perr.Unavailablef("artifacts: %s is not a directory", s.root)
	}
	return nil
}

func notFound(k domain.Key) error {
	return perr.WithField(
		perr.ArtifactNotFoundf("no trained %s model for task %q, run training first", k.Model, k.Task),
		"model",
	)
}

var _ domain.StorePort = (*FS)(nil)
