package net

import (
	"encoding/json"
	"net/http"

	perr "predictkit/internal/platform/errors"
)

// Wire is the body of every JSON response, written by handlers and by
// middleware that rejects a request before routing
type Wire struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Reply builds the status and body for data, or for err when it is non-nil
func Reply(data any, err error, reqID string) (int, Wire) {
	status := http.StatusOK
	w := Wire{RequestID: reqID}
	if err != nil {
		status = perr.HTTPStatus(err)
		pw := perr.WireFrom(err)
		w.Code, w.Error, w.Field = pw.Code, pw.Message, pw.Field
	} else {
		w.Data = data
	}
	w.StatusCode, w.Status = status, http.StatusText(status)
	return status, w
}

// WriteJSON writes v as application/json
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Fail writes err's envelope for r
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := Reply(nil, err, RequestID(r.Context()))
	WriteJSON(w, status, body)
}
