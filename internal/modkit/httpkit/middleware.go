package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"predictkit/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack; zero values pick the defaults
type StackOptions struct {
	Timeout     time.Duration
	MaxInFlight int
	SlowRequest time.Duration
	CORSOrigins []string
}

// CommonStack is the middleware every versioned API scope gets
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Minute
	}
	if o.SlowRequest <= 0 {
		o.SlowRequest = 2 * time.Second
	}
	stack := []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.SlowRequest}),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.CORSOrigins}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(o.Timeout),
	}
	if o.MaxInFlight > 0 {
		stack = append(stack, middleware.Throttle(o.MaxInFlight, o.Timeout))
	}
	return stack
}

// Auth wires the auth middleware to the platform JSON writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p)
}
