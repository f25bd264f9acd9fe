package user

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
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

func (h *Handler) List(ctx context.Context, _ *http.Request, _ internal.Identity) (*transport.Result, error) {
	users, err := h.Service.List(ctx)
	if err != nil {
		return nil, err
	}
	return transport.OK(UsersResponse{Users: users}, nil), nil
}

func (h *Handler) Create(ctx context.Context, r *http.Request, _ internal.Identity) (*transport.Result, error) {
	var dto CreateUserDTO
	if err := transport.DecodeJSON(r, &dto); err != nil {
		return nil, err
	}

	created, err := h.Service.Create(ctx, dto)
	if err != nil {
		return nil, err
	}
	return transport.Created(created, auditView{
		ID:       created.ID,
		Email:    created.Email,
		Name:     &created.Name,
		RoleID:   &created.RoleID,
		IsActive: &created.IsActive,
	}), nil
}

// Register is public; the new account is recorded as the actor of its own creation.
func (h *Handler) Register(ctx context.Context, r *http.Request, _ internal.Identity) (*transport.Result, error) {
	var dto RegisterDTO
	if err := transport.DecodeJSON(r, &dto); err != nil {
		return nil, err
	}

	created, err := h.Service.Register(ctx, dto)
	if err != nil {
		return nil, err
	}

	res := transport.Created(created, auditView{
		ID:       created.ID,
		Email:    created.Email,
		Name:     &created.Name,
		RoleID:   &created.RoleID,
		IsActive: &created.IsActive,
	})
	res.Actor = &internal.Identity{UserID: created.ID, RoleID: created.RoleID, Email: created.Email}
	return res, nil
}

func (h *Handler) Update(ctx context.Context, r *http.Request, _ internal.Identity) (*transport.Result, error) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return nil, err
	}

	var dto UpdateUserDTO
	if err := transport.DecodeJSON(r, &dto); err != nil {
		return nil, err
	}

	updated, err := h.Service.Update(ctx, id, dto)
	if err != nil {
		return nil, err
	}
	return transport.OK(updated, auditView{
		ID:              id,
		Name:            dto.Name,
		RoleID:          dto.RoleID,
		IsActive:        dto.IsActive,
		PasswordChanged: dto.Password != nil,
	}), nil
}

// Delete deactivates the user; rows are never removed.
func (h *Handler) Delete(ctx context.Context, r *http.Request, _ internal.Identity) (*transport.Result, error) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		return nil, err
	}

	deactivated, err := h.Service.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}
	return &transport.Result{Status: http.StatusNoContent, Payload: auditView{ID: id, Email: deactivated.Email}}, nil
}
