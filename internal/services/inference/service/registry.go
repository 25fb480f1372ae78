package service

import (
	"context"
	"sync"

	"predictkit/internal/core/estimator"
	"predictkit/internal/core/featurespec"
	perr "predictkit/internal/platform/errors"
	artifacts "predictkit/internal/services/artifacts/domain"
	dom "predictkit/internal/services/inference/domain"
)

// Registry lazily builds one Service per (task, model) and keeps it for the process lifetime.
// Failed loads are not cached, so a key trained after a miss is picked up on the next call
type Registry struct {
	store   artifacts.StorePort
	catalog *featurespec.Catalog

	mu       sync.Mutex
	services map[artifacts.Key]*Service
}

// NewRegistry binds the registry to a store and the catalog used to validate task ids
func NewRegistry(store artifacts.StorePort, catalog *featurespec.Catalog) *Registry {
	if catalog == nil {
		catalog = featurespec.Default()
	}
	return &Registry{store: store, catalog: catalog, services: map[artifacts.Key]*Service{}}
}

// Catalog returns the task catalog
func (r *Registry) Catalog() *featurespec.Catalog { return r.catalog }

// Scorer implements domain.RegistryPort. A blank model picks the artifact flagged best,
// falling back to the first stored one
func (r *Registry) Scorer(ctx context.Context, task, model string) (dom.ScorerPort, error) {
	return r.Get(ctx, task, model)
}

// Get is Scorer with the concrete type
func (r *Registry) Get(ctx context.Context, task, model string) (*Service, error) {
	if _, err := r.catalog.Lookup(task); err != nil {
		return nil, err
	}
	if model == "" {
		kind, err := r.defaultModel(ctx, task)
		if err != nil {
			return nil, err
		}
		model = string(kind)
	}
	k, err := artifacts.NewKey(task, model)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.services[k]; ok {
		return s, nil
	}
	s, err := New(ctx, r.store, k)
	if err != nil {
		return nil, err
	}
	r.services[k] = s
	return s, nil
}

// Models implements domain.RegistryPort
func (r *Registry) Models(ctx context.Context, task string) ([]artifacts.Ref, error) {
	if _, err := r.catalog.Lookup(task); err != nil {
		return nil, err
	}
	return r.store.List(ctx, task)
}

// Forget drops the cached service for k so the next call reloads it
func (r *Registry) Forget(k artifacts.Key) {
	r.mu.Lock()
	delete(r.services, k)
	r.mu.Unlock()
}

// Ping checks the underlying store
func (r *Registry) Ping(ctx context.Context) error { return r.store.Ping(ctx) }

func (r *Registry) defaultModel(ctx context.Context, task string) (estimator.Kind, error) {
	refs, err := r.store.List(ctx, task)
	if err != nil {
		return "", err
	}
	if len(refs) == 0 {
		return "", perr.WithField(perr.ArtifactNotFoundf("no trained model for task %q, run training first", task), "model")
	}
	for _, ref := range refs {
		if ref.Best {
			return ref.Model, nil
		}
	}
	return refs[0].Model, nil
}

var _ dom.RegistryPort = (*Registry)(nil)
