package category

type CreateCategoryDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateCategoryDTO carries only the fields to change.
type UpdateCategoryDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CategoriesResponse struct {
	Categories []*Category `json:"categories"`
}
