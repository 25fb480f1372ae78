package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perrs "predictkit/internal/platform/errors"
	phttp "predictkit/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

type echoIn struct {
	Rows int `json:"rows" validate:"min=1"`
}

func newAPI(t *testing.T, auth *StaticTokens) http.Handler {
	t.Helper()
	r := phttp.AdaptChi(chi.NewRouter())
	MountAPIV1(r, CommonStack(StackOptions{MaxInFlight: 4}), func(api Router) {
		Get(api, "/tasks/{task}", func(r *http.Request) (any, error) {
			return map[string]string{"task": Param(r, "task")}, nil
		})
		Protected(api, auth, func(p Router) {
			PostBound(p, "/tasks/{task}/score", func(_ *http.Request, in echoIn) (any, error) {
				return in, nil
			})
		})
	})
	return r.Mux()
}

func do(h http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, Envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestMountAPIV1_RoutesAndStack(t *testing.T) {
	h := newAPI(t, NewStaticTokens([]string{"k1"}))

	rec, env := do(h, http.MethodGet, "/api/v1/tasks/loan", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if m, _ := env.Data.(map[string]any); m["task"] != "loan" {
		t.Fatalf("data=%v", env.Data)
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Fatal("common stack not applied")
	}
	if env.RequestID == "" {
		t.Fatal("request id missing from envelope")
	}
}

func TestProtected(t *testing.T) {
	h := newAPI(t, NewStaticTokens([]string{"k1", " ", "k2"}))

	cases := []struct {
		name, token, body string
		want              int
	}{
		{"no token", "", `{"rows":1}`, http.StatusUnauthorized},
		{"wrong token", "nope", `{"rows":1}`, http.StatusUnauthorized},
		{"first token", "k1", `{"rows":1}`, http.StatusOK},
		{"second token", "k2", `{"rows":2}`, http.StatusOK},
		{"invalid payload", "k1", `{"rows":0}`, http.StatusBadRequest},
		{"unknown field", "k1", `{"rows":1,"x":1}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := do(h, http.MethodPost, "/api/v1/tasks/spam/score", tc.body, tc.token)
			if rec.Code != tc.want {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestBearer(t *testing.T) {
	cases := []struct {
		header, want string
		ok           bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc  ", "abc", true},
		{"  BEARER abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tc.header)
		got, err := Bearer(req)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("Bearer(%q) = %q, %v", tc.header, got, err)
		}
		if err != nil && !perrs.IsCode(err, perrs.ErrorCodeUnauthorized) {
			t.Fatalf("Bearer(%q) code = %v", tc.header, perrs.CodeOf(err))
		}
	}
}

func TestStaticTokens(t *testing.T) {
	if NewStaticTokens(nil) != nil || NewStaticTokens([]string{"", "  "}) != nil {
		t.Fatal("blank token lists should disable auth")
	}

	st := NewStaticTokens([]string{"s3cret"})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	uid, err := st.Parse(req)
	if err != nil {
		t.Fatalf("Parse = %q %v", uid, err)
	}
	if !strings.HasPrefix(uid, "token:") || strings.Contains(uid, "s3cret") || len(uid) != len("token:")+8 {
		t.Fatalf("caller id %q", uid)
	}

	req.Header.Set("Authorization", "Bearer s3cre")
	if _, err := st.Parse(req); !perrs.IsCode(err, perrs.ErrorCodeUnauthorized) {
		t.Fatalf("prefix of a token must not match: %v", err)
	}
}
