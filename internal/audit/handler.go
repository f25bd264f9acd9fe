package audit

import (
	"context"
	"net/http"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, Service: svc}
}

// List serves the audit query; an empty body means the first default-sized page.
func (h *Handler) List(ctx context.Context, r *http.Request, _ internal.Identity) (*transport.Result, error) {
	var dto ListRequestDTO
	if err := transport.DecodeOptionalJSON(r, &dto); err != nil {
		return nil, err
	}

	q, err := dto.ToQuery()
	if err != nil {
		return nil, err
	}

	page, err := h.Service.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return transport.OK(page.ToResponse(), nil), nil
}
