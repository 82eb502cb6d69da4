package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const requestIDContextKey = contextKey("request_id")

// contextSetRequestID sets the request id in the request context.
func contextSetRequestID(r *http.Request, id uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), requestIDContextKey, id)
	return r.WithContext(ctx)
}

// contextGetRequestID retrieves the request id, or uuid.Nil outside the middleware.
func contextGetRequestID(r *http.Request) uuid.UUID {
	id, ok := r.Context().Value(requestIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}

	return id
}
