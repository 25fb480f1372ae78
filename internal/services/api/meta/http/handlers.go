// Package http serves liveness, readiness and build information
package http

import (
	"context"
	"net/http"
	"time"

	"predictkit/internal/core/version"
	"predictkit/internal/modkit/httpkit"

	"golang.org/x/sync/errgroup"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(context.Context) error
}

// Check is one readiness dependency. A nil Pinger reports "skipped"
type Check struct {
	Name     string
	Required bool
	Pinger   Pinger
}

type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
	// ReadyTimeout bounds all checks together; zero means 2s
	ReadyTimeout time.Duration
}

type handlers struct{ d Deps }

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.ReadyTimeout <= 0 {
		d.ReadyTimeout = 2 * time.Second
	}
	h := handlers{d: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"predictkit-api"`
	Started string `json:"started" example:"2026-10-01T13:00:00Z"`
	Now     string `json:"now"     example:"2026-10-01T13:05:00Z"`
}

// ReadyCheck is the outcome of one Check: ok, fail or skipped
type ReadyCheck struct {
	Name     string `json:"name"     example:"artifacts"`
	Status   string `json:"status"   example:"ok"`
	Required bool   `json:"required" example:"true"`
	Error    string `json:"error,omitempty" example:"artifacts: stat ./artifacts: no such file or directory"`
	TookMS   int64  `json:"took_ms"  example:"3"`
}

// ReadyResponse is ok when every check passed, degraded when only optional
// checks failed and fail otherwise
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-01T13:05:00Z"`
}

type ServiceResponse struct {
	Name    string `json:"name"    example:"predictkit-api"`
	Started string `json:"started" example:"2026-10-01T13:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Liveness probe
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse "ok"
// @Router /meta/health [get]
func (h handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.d.ServiceName, Started: stamp(h.d.StartedAt), Now: stamp(time.Now())}, nil
}

// @Summary Readiness probe with dependency checks
// @Description Required checks failing give fail, optional ones give degraded
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse ok
// @Router /meta/ready [get]
func (h handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.d.ReadyTimeout)
	defer cancel()

	out := make([]ReadyCheck, len(h.d.Checks))
	var g errgroup.Group
	for i, c := range h.d.Checks {
		g.Go(func() error {
			out[i] = run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	return ReadyResponse{Status: overall(out), Checks: out, Now: stamp(time.Now())}, nil
}

func run(ctx context.Context, c Check) ReadyCheck {
	rc := ReadyCheck{Name: c.Name, Required: c.Required, Status: "skipped"}
	if c.Pinger == nil {
		return rc
	}
	start := time.Now()
	err := c.Pinger.Ping(ctx)
	rc.TookMS = time.Since(start).Milliseconds()
	rc.Status = "ok"
	if err != nil {
		rc.Status, rc.Error = "fail", err.Error()
	}
	return rc
}

func overall(checks []ReadyCheck) string {
	status := "ok"
	for _, c := range checks {
		switch {
		case c.Required && c.Status != "ok":
			return "fail"
		case c.Status == "fail":
			status = "degraded"
		}
	}
	return status
}

// @Summary Build and artifact format version
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo ok
// @Router /meta/version [get]
func (h handlers) version(*http.Request) (any, error) {
	return version.Info(h.d.ServiceName), nil
}

// @Summary Service name and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse ok
// @Router /meta/service [get]
func (h handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.d.ServiceName,
		Started: stamp(h.d.StartedAt),
		Uptime:  int64(time.Since(h.d.StartedAt) / time.Second),
	}, nil
}
