// Package httpkit gives modules the routing and response helpers they need
// without importing internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "predictkit/internal/platform/net/http"
)

type (
	// Envelope is the JSON envelope every endpoint answers with
	Envelope = phttp.Envelope

	// Router is the platform router seam
	Router = phttp.Router
)

// Param returns the named path parameter
func Param(r *http.Request, name string) string { return phttp.URLParam(r, name) }

// WriteOK writes data in the success envelope
func WriteOK(w http.ResponseWriter, r *http.Request, data any) { phttp.RespondOK(w, r, data) }

// WriteError writes err in the error envelope
func WriteError(w http.ResponseWriter, r *http.Request, err error) { phttp.RespondError(w, r, err) }

// WriteAttachment writes body as a file download
func WriteAttachment(w http.ResponseWriter, r *http.Request, filename, contentType string, body []byte) {
	phttp.RespondAttachment(w, r, filename, contentType, body)
}
