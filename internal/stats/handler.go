package stats

import (
	"context"
	"net/http"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Repo RepositoryAPI
}

func NewHandler(base *transport.BaseHandler, repo RepositoryAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Repo:        repo,
	}
}

func (h *Handler) Dashboard(ctx context.Context, _ *http.Request, _ internal.Identity) (*transport.Result, error) {
	counts, err := h.Repo.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return transport.OK(counts, nil), nil
}
