package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"predictkit/internal/modkit/httpkit"
	"predictkit/internal/platform/testkit"
	phttp "predictkit/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestBuild_LaterOptionsWin(t *testing.T) {
	b := Build(WithName("tasks"), WithPrefix("/tasks"), WithName("inference"), WithPorts(42))
	if b.Name != "inference" || b.Prefix != "/tasks" || b.Ports != 42 {
		t.Fatalf("built = %+v", b)
	}
	if b.Register != nil || b.Mw != nil {
		t.Fatalf("unset options should stay zero: %+v", b)
	}
}

func TestBase_MountRoutes(t *testing.T) {
	tag := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "tasks")
			next.ServeHTTP(w, r)
		})
	}
	b := Build(
		WithName("tasks"),
		WithPrefix("tasks/"),
		WithMiddlewares(tag),
		WithRegister(func(r httpkit.Router) {
			httpkit.Get(r, "/extra", func(*http.Request) (any, error) { return "extra", nil })
		}),
	)
	base := b.Base(func(r httpkit.Router) {
		httpkit.Get(r, "/", func(*http.Request) (any, error) { return "own", nil })
	})
	if base.Prefix() != "/tasks" || base.Name() != "tasks" {
		t.Fatalf("prefix=%q name=%q", base.Prefix(), base.Name())
	}

	r := phttp.AdaptChi(chi.NewRouter())
	base.MountRoutes(r)
	for _, path := range []string{"/tasks/", "/tasks/extra"} {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Header().Get("X-Module") != "tasks" {
			t.Fatalf("%s: status=%d header=%q", path, rec.Code, rec.Header().Get("X-Module"))
		}
	}
}

func TestBase_RequiresNameAndPrefix(t *testing.T) {
	base := Build().Base(nil)
	testkit.MustPanic(t, func() { _ = base.Name() })
	testkit.MustPanic(t, func() { _ = base.Prefix() })
}
