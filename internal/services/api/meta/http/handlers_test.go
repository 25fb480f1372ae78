package http

import (
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"predictkit/internal/core/version"
	phttp "predictkit/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func serve(t *testing.T, d Deps, path string, out any) {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	Register(r, d)
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("%s status=%d", path, rec.Code)
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("data: %v", err)
	}
}

func TestReady(t *testing.T) {
	down := errors.New("refused")
	cases := []struct {
		name   string
		checks []Check
		want   string
	}{
		{"store ok, no pg", []Check{{Name: "artifacts", Required: true, Pinger: pinger{}}, {Name: "pg"}}, "ok"},
		{"all ok", []Check{{Name: "artifacts", Required: true, Pinger: pinger{}}, {Name: "pg", Required: true, Pinger: pinger{}}}, "ok"},
		{"store failing", []Check{{Name: "artifacts", Required: true, Pinger: pinger{err: down}}}, "fail"},
		{"required skipped", []Check{{Name: "artifacts", Required: true}}, "fail"},
		{"optional failing", []Check{{Name: "artifacts", Required: true, Pinger: pinger{}}, {Name: "cache", Pinger: pinger{err: down}}}, "degraded"},
		{"nothing to check", nil, "ok"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got ReadyResponse
			serve(t, Deps{Checks: tc.checks}, "/ready", &got)
			if got.Status != tc.want || len(got.Checks) != len(tc.checks) {
				t.Fatalf("status=%s checks=%+v", got.Status, got.Checks)
			}
			for i, c := range got.Checks {
				if c.Name != tc.checks[i].Name {
					t.Fatalf("check order changed: %+v", got.Checks)
				}
			}
		})
	}
}

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestReady_Timeout(t *testing.T) {
	var got ReadyResponse
	d := Deps{ReadyTimeout: 20 * time.Millisecond, Checks: []Check{{Name: "pg", Required: true, Pinger: slowPinger{}}}}
	serve(t, d, "/ready", &got)
	if got.Status != "fail" || got.Checks[0].Error == "" {
		t.Fatalf("ready = %+v", got)
	}
}

func TestHealthVersionService(t *testing.T) {
	d := Deps{ServiceName: "predictkit-api", StartedAt: time.Now().Add(-time.Minute)}

	var h HealthResponse
	serve(t, d, "/health", &h)
	if !h.OK || h.Service != "predictkit-api" {
		t.Fatalf("health=%+v", h)
	}

	var v version.BuildInfo
	serve(t, d, "/version", &v)
	if v.Service != "predictkit-api" || v.ArtifactFormat != version.ArtifactFormat {
		t.Fatalf("version=%+v", v)
	}

	var s ServiceResponse
	serve(t, d, "/service", &s)
	if s.Uptime < 59 {
		t.Fatalf("uptime=%d", s.Uptime)
	}
}
