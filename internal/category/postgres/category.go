package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/backoffice/internal"
	categoryDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/category"
	"github.com/frahmantamala/backoffice/internal/store"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]categoryDatamodel.Category, error) {
	var categories []categoryDatamodel.Category
	if err := store.Conn(ctx, r.db).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, store.Translate(err)
	}
	return categories, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.Category, error) {
	var cat categoryDatamodel.Category
	if err := store.Conn(ctx, r.db).First(&cat, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCategoryNotFound
		}
		return nil, store.Translate(err)
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.Category) error {
	return store.Translate(store.Conn(ctx, r.db).Create(cat).Error)
}

// Update writes every column, so is_active=false is persisted despite the column default.
func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.Category) error {
	return store.Translate(store.Conn(ctx, r.db).Save(cat).Error)
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	res := store.Conn(ctx, r.db).Delete(&categoryDatamodel.Category{}, id)
	if res.Error != nil {
		return store.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrCategoryNotFound
	}
	return nil
}
