package module

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"predictkit/internal/modkit"
	"predictkit/internal/platform/config"
	phttp "predictkit/internal/platform/net/http"
	"predictkit/internal/platform/store"
	metahttp "predictkit/internal/services/api/meta/http"

	"github.com/go-chi/chi/v5"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

// pgStub is a TxRunner that only answers Ping
type pgStub struct {
	store.TxRunner
	pinger
}

func ready(t *testing.T, deps modkit.Deps, ports Ports) metahttp.ReadyResponse {
	t.Helper()
	m := New(deps, modkit.WithPorts(ports))
	if m.Name() != "meta" || m.Ports() != nil {
		t.Fatalf("module %s ports %v", m.Name(), m.Ports())
	}
	r := phttp.AdaptChi(chi.NewRouter())
	m.MountRoutes(r)

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meta/ready", nil))
	var env struct {
		Data metahttp.ReadyResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %d: %v", rec.Code, err)
	}
	return env.Data
}

func TestNew_ChecksFollowDeps(t *testing.T) {
	cfg := config.New()

	got := ready(t, modkit.Deps{Cfg: cfg}, Ports{Artifacts: pinger{}})
	if got.Status != "ok" || len(got.Checks) != 1 || got.Checks[0].Name != "artifacts" {
		t.Fatalf("fs only = %+v", got)
	}

	got = ready(t, modkit.Deps{Cfg: cfg, PG: pgStub{pinger: pinger{err: errors.New("refused")}}}, Ports{Artifacts: pinger{}})
	if got.Status != "fail" || len(got.Checks) != 2 || got.Checks[1].Name != "pg" {
		t.Fatalf("pg down = %+v", got)
	}

	got = ready(t, modkit.Deps{Cfg: cfg}, Ports{})
	if got.Status != "fail" || got.Checks[0].Status != "skipped" {
		t.Fatalf("no store = %+v", got)
	}
}
