package role

import (
	"context"
	"net/http"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/auth"
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

func (h *Handler) List(ctx context.Context, _ *http.Request, _ internal.Identity) (*transport.Result, error) {
	roles, err := h.Service.List(ctx)
	if err != nil {
		return nil, err
	}
	return transport.OK(RolesResponse{Roles: roles}, nil), nil
}

func (h *Handler) Catalog(_ context.Context, _ *http.Request, _ internal.Identity) (*transport.Result, error) {
	return transport.OK(CatalogResponse{Groups: auth.CatalogGroups()}, nil), nil
}

func (h *Handler) Create(ctx context.Context, r *http.Request, _ internal.Identity) (*transport.Result, error) {
	var dto CreateRoleDTO
	if err := transport.DecodeJSON(r, &dto); err != nil {
		return nil, err
	}

	created, err := h.Service.Create(ctx, dto)
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

	var dto UpdateRoleDTO
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

	deactivated, err := h.Service.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &transport.Result{Status: http.StatusNoContent, Payload: deactivated}, nil
}

func (h *Handler) SetPrivileges(ctx context.Context, r *http.Request, _ internal.Identity) (*transport.Result, error) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return nil, err
	}

	var dto SetPrivilegesDTO
	if err := transport.DecodeJSON(r, &dto); err != nil {
		return nil, err
	}

	updated, change, err := h.Service.SetPrivileges(ctx, id, dto)
	if err != nil {
		return nil, err
	}
	return transport.OK(updated, change), nil
}
