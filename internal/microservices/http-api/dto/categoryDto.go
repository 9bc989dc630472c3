package dto

import "yamdb/internal/microservices/http-api/models"

// CreateCategoryDTO for POST /categories/
type CreateCategoryDTO struct {
	Name string `json:"name" form:"name" binding:"required,max=256"`
	Slug string `json:"slug" form:"slug" binding:"required,max=50"`
}

// UpdateCategoryDTO for PATCH /categories/{slug}/
type UpdateCategoryDTO struct {
	Name *string `json:"name" form:"name" binding:"omitempty,max=256"`
	Slug *string `json:"slug" form:"slug" binding:"omitempty,max=50"`
}

type CategoryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (d CreateCategoryDTO) ToModel() models.Category {
	return models.Category{Name: d.Name, Slug: d.Slug}
}

func (d UpdateCategoryDTO) ApplyTo(c *models.Category) {
	if d.Name != nil {
		c.Name = *d.Name
	}
	if d.Slug != nil {
		c.Slug = *d.Slug
	}
}

func FromModelToCategoryResponse(c *models.Category) CategoryResponse {
	return CategoryResponse{Name: c.Name, Slug: c.Slug}
}
