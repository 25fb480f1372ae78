package domain

import (
	"encoding/json"

	"predictkit/internal/core/featurespec"
	"predictkit/internal/core/pipeline"
	"predictkit/internal/core/version"
	perr "predictkit/internal/platform/errors"
)

type document struct {
	Format   int              `json:"format"`
	Task     string           `json:"task"`
	Model    string           `json:"model"`
	Spec     featurespec.Spec `json:"spec"`
	Pipeline json.RawMessage  `json:"pipeline"`
	Meta     Meta             `json:"meta"`
}

// Encode renders a as one self-contained JSON document
func Encode(a Artifact) ([]byte, error) {
	if a.Spec == nil || a.Pipeline == nil {
		return nil, perr.InvalidArgf("artifact %s: missing spec or pipeline", a.Key)
	}
	if a.Spec.Task != a.Task {
		return nil, perr.InvalidArgf("artifact %s: spec is for task %q", a.Key, a.Spec.Task)
	}
	if !a.Pipeline.Transform.Matches(a.Spec) {
		return nil, perr.InvalidArgf("artifact %s: pipeline columns do not match spec", a.Key)
	}
	p, err := json.Marshal(a.Pipeline)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "artifact %s: encode pipeline", a.Key)
	}
	return json.Marshal(document{
		Format:   version.ArtifactFormat,
		Task:     a.Task,
		Model:    string(a.Model),
		Spec:     a.Spec.Clone(),
		Pipeline: p,
		Meta:     a.Meta,
	})
}

// Decode parses a document written by Encode and checks it belongs to k.
// Every failure is an ArtifactCorrupt error
func Decode(k Key, b []byte) (Artifact, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return Artifact{}, corrupt(k, perr.Wrap(err, perr.ErrorCodeArtifactCorrupt, "decode document"))
	}
	if doc.Format < 1 || doc.Format > version.ArtifactFormat {
		return Artifact{}, corrupt(k, perr.ArtifactCorruptf("unsupported format %d", doc.Format))
	}
	if doc.Task != k.Task || doc.Model != string(k.Model) {
		return Artifact{}, corrupt(k, perr.ArtifactCorruptf("document is for %s/%s", doc.Task, doc.Model))
	}
	spec, err := featurespec.New(doc.Spec)
	if err != nil {
		return Artifact{}, corrupt(k, perr.Wrap(err, perr.ErrorCodeArtifactCorrupt, "stored spec"))
	}
	var p pipeline.Pipeline
	if err := json.Unmarshal(doc.Pipeline, &p); err != nil {
		return Artifact{}, corrupt(k, err)
	}
	if !p.Transform.Matches(spec) {
		return Artifact{}, corrupt(k, perr.ArtifactCorruptf("pipeline columns do not match stored spec"))
	}
	if p.Kind() != k.Model {
		return Artifact{}, corrupt(k, perr.ArtifactCorruptf("pipeline holds a %s model", p.Kind()))
	}
	return Artifact{Key: k, Spec: spec, Pipeline: &p, Meta: doc.Meta}, nil
}

// DecodeMeta reads only the metadata of a document
func DecodeMeta(b []byte) (Meta, error) {
	var doc struct {
		Meta Meta `json:"meta"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return Meta{}, perr.Wrap(err, perr.ErrorCodeArtifactCorrupt, "decode meta")
	}
	return doc.Meta, nil
}

func corrupt(k Key, err error) error {
	msg := "artifact " + k.String() + " is corrupt, retrain it"
	return perr.WithOp(perr.Wrap(err, perr.ErrorCodeArtifactCorrupt, msg), "artifacts.Decode")
}
