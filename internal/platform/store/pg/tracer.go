package pg

import (
	"context"
	"strings"

	"predictkit/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one executed statement
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives an event per statement
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// maxSQL bounds the logged statement
const maxSQL = 512

// Tracer returns a logger that ALWAYS prints SQL when LogSQL=true,
// independent of the process-wide root level.
// Argument values are never logged; artifact documents are bound as args
func Tracer(root logger.Logger) QueryTracer {
	ll := root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()
	return &zlTracer{log: ll}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(_ context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Int("nargs", len(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// compact folds whitespace runs to one space and truncates to maxSQL bytes
func compact(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxSQL {
		s = s[:maxSQL] + "..."
	}
	return s
}
