package store

import (
	"context"
	"fmt"
	"time"

	"predictkit/internal/platform/logger"
	"predictkit/internal/platform/store/pg"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	backoffStart = 150 * time.Millisecond
	backoffMax   = 2 * time.Second
)

// openPG builds the pool and returns the adapter once a ping succeeds
func openPG(ctx context.Context, cfg Config, log logger.Logger) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		SlowMs:   cfg.PG.SlowQueryMs,
	}, tracer, func(pc *pgxpool.Config) {
		if cfg.AppName != "" {
			pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
		}
	})
	if err != nil {
		return nil, err
	}
	if err := waitReady(ctx, p.Pool, cfg.PG); err != nil {
		p.Close()
		return nil, err
	}
	return newPGAdapter(p), nil
}

// waitReady pings with capped exponential backoff. The pool is pinged directly
// so boot attempts stay out of the SQL trace
func waitReady(ctx context.Context, p Pinger, cfg PGConfig) error {
	var (
		err   error
		delay = backoffStart
		n     = cfg.retries()
	)
	for range n {
		pctx, cancel := context.WithTimeout(ctx, cfg.pingTimeout())
		err = p.Ping(pctx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, backoffMax)
	}
	return fmt.Errorf("postgres ping failed after %d attempts: %w", n, err)
}
