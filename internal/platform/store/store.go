// Package store opens the optional SQL backend and exposes the narrow query
// surface repositories are written against
package store

import (
	"context"
	"errors"
	"fmt"

	"predictkit/internal/platform/logger"
)

// Store holds the opened backends. PG is nil when postgres is disabled
type Store struct {
	Log logger.Logger
	PG  TxRunner
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is what a repository sees, inside or outside a transaction
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner commits when fn returns nil and rolls back otherwise
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

type Pinger interface{ Ping(context.Context) error }

// Option adjusts the Store before any backend opens
type Option func(*Store)

func WithLogger(l logger.Logger) Option { return func(s *Store) { s.Log = l } }

// Open connects the backends cfg enables and waits until they answer
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		o(s)
	}
	if !cfg.PG.Enabled {
		return s, nil
	}
	pg, err := openPG(ctx, cfg, s.Log)
	if err != nil {
		return nil, err
	}
	s.PG = pg
	return s, nil
}

// Guard pings every backend that can be pinged
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: nil")
	}
	if p, ok := s.PG.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
	}
	return nil
}

// Close releases the backends; a nil or empty store is a no-op
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
