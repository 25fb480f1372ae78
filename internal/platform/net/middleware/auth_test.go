package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	perr "predictkit/internal/platform/errors"
	pnet "predictkit/internal/platform/net"
	"predictkit/internal/platform/net/middleware"
)

type portFunc func(*http.Request) (string, error)

func (f portFunc) Parse(r *http.Request) (string, error) { return f(r) }

func TestAuth(t *testing.T) {
	cases := []struct {
		name   string
		port   middleware.AuthPort
		status int
		caller string
	}{
		{"nil port", nil, http.StatusOK, ""},
		{"rejected", portFunc(func(*http.Request) (string, error) {
			return "", perr.Unauthorizedf("invalid api token")
		}), http.StatusUnauthorized, ""},
		{"accepted", portFunc(func(*http.Request) (string, error) { return "token:ab12cd34", nil }), http.StatusOK, "token:ab12cd34"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				seen = pnet.UserID(r.Context())
			})
			rec := httptest.NewRecorder()
			middleware.Auth(tc.port)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks/loan/predict", nil))
			if rec.Code != tc.status || called != (tc.status == http.StatusOK) || seen != tc.caller {
				t.Fatalf("status=%d called=%v caller=%q", rec.Code, called, seen)
			}
		})
	}
}
