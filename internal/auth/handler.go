package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/audit"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

// Login is public; it is the only route that runs outside the request pipeline.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := transport.DecodeJSON(r, &dto); err != nil {
		h.Service.RejectLogin(r.Context(), audit.ReasonValidationFailed)
		h.WriteAppError(w, r, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, resp)
}

func (h *Handler) Me(ctx context.Context, _ *http.Request, actor internal.Identity) (*transport.Result, error) {
	profile, err := h.Service.CurrentUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	return transport.OK(profile, nil), nil
}

// Logout only acknowledges; tokens are stateless and expire on their own.
func (h *Handler) Logout(_ context.Context, _ *http.Request, _ internal.Identity) (*transport.Result, error) {
	return transport.OK(LogoutResponse{Message: "Logged out successfully"}, nil), nil
}
