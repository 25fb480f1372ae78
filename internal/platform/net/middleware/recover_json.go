package middleware

import (
	"net/http"

	perr "predictkit/internal/platform/errors"
	"predictkit/internal/platform/logger"
	pnet "predictkit/internal/platform/net"

	"github.com/pkg/errors"
)

// RecoverJSON turns a handler panic into a 500 envelope. The panic value and
// its stack go to the request logger, never to the client
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil || v == http.ErrAbortHandler {
				if v != nil {
					panic(v)
				}
				return
			}
			// captured here, the stack still holds the panicking frames
			cause := errors.Errorf("panic: %v", v)
			logger.C(r.Context()).Error().Stack().Err(cause).Str("path", r.URL.Path).Msg("panic recovered")

			if id := pnet.RequestID(r.Context()); id != "" {
				w.Header().Set("X-Request-ID", id)
			}
			pnet.Fail(w, r, perr.PanicErrf("internal error"))
		}()
		next.ServeHTTP(w, r)
	})
}
