// Package net holds transport neutral request context and the reply envelope
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyCaller ctxKey = "caller_id"

// WithRequestID sets the request id where chimw.GetReqID finds it
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// WithUser annotates ctx with the authenticated caller id
func WithUser(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, keyCaller, userID)
}

// RequestID returns the request id on ctx or ""
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// UserID returns the caller id on ctx or ""
func UserID(ctx context.Context) string {
	v, _ := ctx.Value(keyCaller).(string)
	return v
}
