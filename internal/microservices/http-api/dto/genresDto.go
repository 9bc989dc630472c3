package dto

import "yamdb/internal/microservices/http-api/models"

type CreateGenreDTO struct {
	Name string `json:"name" form:"name" binding:"required,max=256"`
	Slug string `json:"slug" form:"slug" binding:"required,max=50"`
}

type UpdateGenreDTO struct {
	Name *string `json:"name" form:"name" binding:"omitempty,max=256"`
	Slug *string `json:"slug" form:"slug" binding:"omitempty,max=50"`
}

type GenreResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (d CreateGenreDTO) ToModel() models.Genre {
	return models.Genre{Name: d.Name, Slug: d.Slug}
}

func (d UpdateGenreDTO) ApplyTo(g *models.Genre) {
	if d.Name != nil {
		g.Name = *d.Name
	}
	if d.Slug != nil {
		g.Slug = *d.Slug
	}
}

func FromModelToGenreResponse(g *models.Genre) GenreResponse {
	return GenreResponse{Name: g.Name, Slug: g.Slug}
}
