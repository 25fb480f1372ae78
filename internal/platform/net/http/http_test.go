package http

import (
	"context"
	"encoding/json"
	"net"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"predictkit/internal/platform/config"
	perr "predictkit/internal/platform/errors"
	pnet "predictkit/internal/platform/net"

	"github.com/go-chi/chi/v5"
)

type scoreIn struct {
	Model string `json:"model" validate:"required"`
}

func testRouter() Router {
	r := AdaptChi(chi.NewRouter())
	r.Route("/tasks", func(tr Router) {
		tr.Get("/{task}", JSONHandlerNoBody(func(r *stdhttp.Request) (any, error) {
			if URLParam(r, "task") == "fraud" {
				return nil, perr.Newf(perr.ErrorCodeNotFound, "unknown task %q", "fraud")
			}
			return map[string]string{"task": URLParam(r, "task")}, nil
		}))
		tr.Group(func(g Router) {
			g.Use(func(next stdhttp.Handler) stdhttp.Handler {
				return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
					next.ServeHTTP(w, r.WithContext(pnet.WithRequestID(r.Context(), "req-9")))
				})
			})
			g.Post("/{task}/score", JSONHandler(func(_ *stdhttp.Request, in scoreIn) (any, error) { return in, nil }))
		})
	})
	return r
}

func call(r Router, method, path, body string) (*httptest.ResponseRecorder, Envelope) {
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var env Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestHandlers_Envelope(t *testing.T) {
	r := testRouter()
	cases := []struct {
		name, method, path, body string
		status                   int
		code                     perr.ErrorCode
		reqID                    string
	}{
		{"ok", stdhttp.MethodGet, "/tasks/loan", "", stdhttp.StatusOK, 0, ""},
		{"not found", stdhttp.MethodGet, "/tasks/fraud", "", stdhttp.StatusNotFound, perr.ErrorCodeNotFound, ""},
		{"bound", stdhttp.MethodPost, "/tasks/loan/score", `{"model":"random_forest"}`, stdhttp.StatusOK, 0, "req-9"},
		{"invalid", stdhttp.MethodPost, "/tasks/loan/score", `{}`, stdhttp.StatusBadRequest, perr.ErrorCodeValidation, "req-9"},
		{"bad json", stdhttp.MethodPost, "/tasks/loan/score", `{`, stdhttp.StatusBadRequest, perr.ErrorCodeJSON, "req-9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := call(r, tc.method, tc.path, tc.body)
			if rec.Code != tc.status || env.StatusCode != tc.status || env.Code != tc.code || env.RequestID != tc.reqID {
				t.Fatalf("status=%d env=%+v", rec.Code, env)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Fatalf("content type %q", ct)
			}
			if (tc.code == 0) == (env.Error != "") {
				t.Fatalf("error field = %q", env.Error)
			}
		})
	}
}

func TestRespondAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(stdhttp.MethodPost, "/tasks/loan/predict?format=csv", nil)
	req = req.WithContext(pnet.WithRequestID(req.Context(), "req-1"))
	RespondAttachment(rec, req, "loan predictions.csv", "text/csv", []byte("prediction\nDefault\n"))

	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="loan predictions.csv"` {
		t.Fatalf("disposition %q", got)
	}
	if rec.Header().Get("X-Request-Id") != "req-1" || rec.Body.String() != "prediction\nDefault\n" {
		t.Fatalf("headers=%v body=%q", rec.Header(), rec.Body.String())
	}
}

func TestMountProfiler(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		r := AdaptChi(chi.NewRouter())
		MountProfiler(r, "/debug", enabled)
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, "/debug/pprof/cmdline", nil))
		if want := map[bool]int{true: stdhttp.StatusOK, false: stdhttp.StatusNotFound}[enabled]; rec.Code != want {
			t.Fatalf("enabled=%v status=%d", enabled, rec.Code)
		}
	}
}

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = l.Close() }()
	return l.Addr().String()
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	addr := freePort(t)
	t.Setenv("CORE_API_PORT", addr)
	t.Setenv("CORE_API_SHUTDOWN_GRACE", "1s")

	s := NewServer(config.New().Prefix("CORE_"))
	if s.Addr() != addr {
		t.Fatalf("addr=%s", s.Addr())
	}
	s.Router().Get("/ping", func(w stdhttp.ResponseWriter, r *stdhttp.Request) { RespondOK(w, r, "pong") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var resp *stdhttp.Response
	var err error
	for range 50 {
		if resp, err = stdhttp.Get("http://" + addr + "/ping"); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != stdhttp.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewServer_PortForms(t *testing.T) {
	t.Setenv("CORE_API_PORT", "8081")
	if got := NewServer(config.New().Prefix("CORE_")).Addr(); got != ":8081" {
		t.Fatalf("addr=%s", got)
	}
}
