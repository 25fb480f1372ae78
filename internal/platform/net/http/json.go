package http

import (
	stdhttp "net/http"

	"predictkit/internal/platform/net/http/bind"
)

// JSONHandler binds and validates a T from the body, calls fn and writes the envelope
func JSONHandler[T any](fn func(*stdhttp.Request, T) (any, error)) Handler {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		reply(w, r, func() (any, error) { return fn(r, in) })
	}
}

// JSONHandlerNoBody calls fn without reading a body and writes the envelope
func JSONHandlerNoBody(fn func(*stdhttp.Request) (any, error)) Handler {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		reply(w, r, func() (any, error) { return fn(r) })
	}
}

func reply(w stdhttp.ResponseWriter, r *stdhttp.Request, fn func() (any, error)) {
	out, err := fn()
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondOK(w, r, out)
}
