package middleware

import (
	"net/http"

	pnet "predictkit/internal/platform/net"
)

// AuthPort identifies the caller of a request
type AuthPort interface {
	// Parse returns the caller id or an error to reject the request with
	Parse(r *http.Request) (callerID string, err error)
}

// Auth rejects requests p cannot identify and stores the caller id on the context.
// A nil port lets everything through
func Auth(p AuthPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := p.Parse(r)
			if err != nil {
				pnet.Fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithUser(r.Context(), uid)))
		})
	}
}
