// Package http is the HTTP transport: the envelope every endpoint answers with, a
// chi backed router seam and the server
package http

import (
	"mime"
	stdhttp "net/http"

	pnet "predictkit/internal/platform/net"
)

// Envelope is the response body of every JSON endpoint
type Envelope = pnet.Wire

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) { pnet.WriteJSON(w, status, v) }

// RespondOK writes a 200 envelope with data
func RespondOK(w stdhttp.ResponseWriter, r *stdhttp.Request, data any) {
	status, body := pnet.Reply(data, nil, pnet.RequestID(r.Context()))
	JSON(w, status, body)
}

// RespondError maps err to its status and writes the error envelope
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) { pnet.Fail(w, r, err) }

// RespondAttachment writes body as a download named filename
func RespondAttachment(w stdhttp.ResponseWriter, r *stdhttp.Request, filename, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if reqID := pnet.RequestID(r.Context()); reqID != "" {
		w.Header().Set("X-Request-Id", reqID)
	}
	w.WriteHeader(stdhttp.StatusOK)
	_, _ = w.Write(body)
}
