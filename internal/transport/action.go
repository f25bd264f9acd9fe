package transport

import (
	"context"
	"net/http"

	"github.com/frahmantamala/backoffice/internal"
)

// Result is what a protected action hands back to the pipeline.
// Payload is the audit snapshot; Body is sent to the client. Actor overrides the caller
// as the audit actor, for public operations that create their own.
type Result struct {
	Status  int
	Body    interface{}
	Payload interface{}
	Actor   *internal.Identity
}

// Action is the business step of a protected operation. It runs after authentication
// and authorization with a context detached from client cancellation.
type Action func(ctx context.Context, r *http.Request, actor internal.Identity) (*Result, error)

func OK(body interface{}, payload interface{}) *Result {
	return &Result{Status: http.StatusOK, Body: body, Payload: payload}
}

func Created(body interface{}, payload interface{}) *Result {
	return &Result{Status: http.StatusCreated, Body: body, Payload: payload}
}
