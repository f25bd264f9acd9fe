package category

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/backoffice/internal"
	"github.com/frahmantamala/backoffice/internal/core/common/validation"
	categoryDatamodel "github.com/frahmantamala/backoffice/internal/core/datamodel/category"
	"github.com/frahmantamala/backoffice/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Category, error)
	Create(ctx context.Context, actor internal.Identity, dto CreateCategoryDTO) (*Category, error)
	Update(ctx context.Context, id int64, dto UpdateCategoryDTO) (*Category, error)
	Delete(ctx context.Context, id int64) (*Category, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Category, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]*Category, 0, len(rows))
	for i := range rows {
		categories = append(categories, FromDataModel(&rows[i]))
	}
	return categories, nil
}

func (s *Service) Create(ctx context.Context, actor internal.Identity, dto CreateCategoryDTO) (*Category, error) {
	name := strings.TrimSpace(dto.Name)
	if verr := validation.ValidateCategoryName(name); verr != nil {
		return nil, verr
	}

	createdBy := actor.UserID
	row := &categoryDatamodel.Category{
		Name:        name,
		Description: strings.TrimSpace(dto.Description),
		IsActive:    true,
		CreatedBy:   &createdBy,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, err
	}

	logger.FromOr(ctx, s.logger).Info("category created", "category_id", row.ID, "name", row.Name)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateCategoryDTO) (*Category, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if verr := validation.ValidateCategoryName(name); verr != nil {
			return nil, verr
		}
		row.Name = name
	}
	if dto.Description != nil {
		row.Description = strings.TrimSpace(*dto.Description)
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

// Delete removes the category and returns what was removed.
func (s *Service) Delete(ctx context.Context, id int64) (*Category, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}

	logger.FromOr(ctx, s.logger).Info("category deleted", "category_id", id)
	return FromDataModel(row), nil
}
