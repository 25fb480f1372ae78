package bind

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "predictkit/internal/platform/errors"
	"predictkit/internal/platform/testkit"
)

type scoreIn struct {
	Model string   `json:"model" validate:"required,max=8"`
	Rows  []string `json:"rows" validate:"min=1"`
	Note  string   `json:",omitempty"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/score", strings.NewReader(body))
}

func TestParseJSON(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		opts  []Options
		code  perr.ErrorCode
		field string
	}{
		{"ok", `{"model":"rf","rows":["a"]}`, nil, perr.ErrorCodeUnknown, ""},
		{"empty", ``, nil, perr.ErrorCodeJSON, ""},
		{"broken", `{"model":`, nil, perr.ErrorCodeJSON, ""},
		{"unknown field", `{"model":"rf","rows":["a"],"x":1}`, nil, perr.ErrorCodeJSON, ""},
		{"unknown allowed", `{"model":"rf","rows":["a"],"x":1}`, []Options{{AllowUnknown: true}}, perr.ErrorCodeUnknown, ""},
		{"trailing", `{"model":"rf","rows":["a"]} {}`, nil, perr.ErrorCodeJSON, ""},
		{"missing model", `{"rows":["a"]}`, nil, perr.ErrorCodeValidation, "model"},
		{"no rows", `{"model":"rf","rows":[]}`, nil, perr.ErrorCodeValidation, "rows"},
		{"too long", `{"model":"logistic","rows":["a"],"Note":"xxxxxxxxxx"}`, []Options{{MaxBytes: 16}}, perr.ErrorCodeJSON, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseJSON[scoreIn](post(tc.body), tc.opts...)
			if tc.code == perr.ErrorCodeUnknown {
				if err != nil || got.Model != "rf" {
					t.Fatalf("ParseJSON = %+v, %v", got, err)
				}
				return
			}
			testkit.MustCode(t, err, tc.code)
			if tc.field != "" {
				if e, ok := perr.As(err); !ok || e.Field() != tc.field {
					t.Fatalf("field = %v, want %q", err, tc.field)
				}
			}
		})
	}
}

func TestParseJSON_NilBody(t *testing.T) {
	r := post("")
	r.Body = nil
	_, err := ParseJSON[scoreIn](r)
	testkit.MustCode(t, err, perr.ErrorCodeJSON)
}

func TestParseJSON_ClosesBody(t *testing.T) {
	rc := &closeSpy{Reader: strings.NewReader(`{"model":"rf","rows":["a"]}`)}
	r := post("")
	r.Body = rc
	if _, err := ParseJSON[scoreIn](r); err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if !rc.closed {
		t.Fatal("body not closed")
	}
}

type closeSpy struct {
	io.Reader
	closed bool
}

func (c *closeSpy) Close() error { c.closed = true; return nil }

func TestValidate_ShortMessages(t *testing.T) {
	err := Validate(scoreIn{Model: "a_very_long_name", Rows: []string{"x"}})
	testkit.MustCode(t, err, perr.ErrorCodeValidation)
	if !strings.Contains(err.Error(), "model must be at most 8") {
		t.Fatalf("message = %q", err)
	}

	err = Validate(scoreIn{Model: "rf"})
	if !strings.Contains(err.Error(), "rows must be at least 1") {
		t.Fatalf("message = %q", err)
	}

	testkit.MustCode(t, Validate(42), perr.ErrorCodeValidation)
}
