package category

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

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) List(ctx context.Context, _ *http.Request, _ internal.Identity) (*transport.Result, error) {
	categories, err := h.Service.List(ctx)
	if err != nil {
		return nil, err
	}
	return transport.OK(CategoriesResponse{Categories: categories}, nil), nil
}

func (h *Handler) Create(ctx context.Context, r *http.Request, actor internal.Identity) (*transport.Result, error) {
	var dto CreateCategoryDTO
	if err := transport.DecodeJSON(r, &dto); err != nil {
		return nil, err
	}

	created, err := h.Service.Create(ctx, actor, dto)
	if err != nil {
		return nil, err
	}
	return transport.Created(created, created), nil
}

func (h *Handler) Update(ctx context.Context, r *http.Request, _ internal.Identity) (*transport.Result, error) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return nil, err
	}

	var dto UpdateCategoryDTO
	if err := transport.DecodeJSON(r, &dto); err != nil {
		return nil, err
	}

	updated, err := h.Service.Update(ctx, id, dto)
	if err != nil {
		return nil, err
	}
	return transport.OK(updated, map[string]interface{}{"id": id, "changes": dto}), nil
}

func (h *Handler) Delete(ctx context.Context, r *http.Request, _ internal.Identity) (*transport.Result, error) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return nil, err
	}

	deleted, err := h.Service.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return &transport.Result{Status: http.StatusNoContent, Payload: deleted}, nil
}
