package category

import (
	"context"
	"time"

	categoryDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/category"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   *int64    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RepositoryAPI persists categories. Lookups of missing rows return internal.ErrCategoryNotFound.
type RepositoryAPI interface {
	List(ctx context.Context) ([]categoryDatamodel.Category, error)
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error)
	Create(ctx context.Context, row *categoryDatamodel.Category) error
	Update(ctx context.Context, row *categoryDatamodel.Category) error
	Delete(ctx context.Context, id int64) error
}

func FromDataModel(c *categoryDatamodel.Category) *Category {
	return &Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
