// Package service implements the artifact store port on top of a storage backend
package service

import (
	"context"
	"time"

	"predictkit/internal/platform/logger"
	dom "predictkit/internal/services/artifacts/domain"
)

// Service logs every store operation and otherwise defers to the backend
type Service struct {
	backend dom.StorePort
	log     *logger.Logger
}

// New wraps backend
func New(backend dom.StorePort) *Service {
	return &Service{backend: backend, log: logger.Named("artifacts")}
}

// Save implements domain.StorePort
func (s *Service) Save(ctx context.Context, a dom.Artifact) error {
	start := time.Now()
	err := s.backend.Save(ctx, a)
	ev := s.log.Info()
	if err != nil {
		ev = s.log.Error().Err(err)
	}
	ev.Str("task", a.Task).
		Str("model", string(a.Model)).
		Str("run_id", a.Meta.RunID.String()).
		Dur("elapsed", time.Since(start)).
		Msg("artifact saved")
	return err
}

// Load implements domain.StorePort
func (s *Service) Load(ctx context.Context, k dom.Key) (dom.Artifact, error) {
	start := time.Now()
	a, err := s.backend.Load(ctx, k)
	if err != nil {
		s.log.Warn().Err(err).Str("task", k.Task).Str("model", string(k.Model)).Msg("artifact load failed")
		return dom.Artifact{}, err
	}
	s.log.Debug().
		Str("task", k.Task).
		Str("model", string(k.Model)).
		Str("run_id", a.Meta.RunID.String()).
		Dur("elapsed", time.Since(start)).
		Msg("artifact loaded")
	return a, nil
}

// List implements domain.StorePort
func (s *Service) List(ctx context.Context, task string) ([]dom.Ref, error) {
	return s.backend.List(ctx, task)
}

// Ping implements domain.StorePort
func (s *Service) Ping(ctx context.Context) error { return s.backend.Ping(ctx) }

var _ dom.StorePort = (*Service)(nil)
