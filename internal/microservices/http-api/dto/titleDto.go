package dto

import (
	"yamdb/internal/microservices/http-api/models"
)

// CreateTitleDTO used for POST /titles/. Category and genres are referenced by slug.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        *int     `json:"year" binding:"required"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

// UpdateTitleDTO used for PATCH /titles/{id}/. A present "genre" list, even an
// empty one, replaces the title's genres.
type UpdateTitleDTO struct {
	Name        *string  `json:"name" binding:"omitempty,max=256"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`
	Category    *string  `json:"category"`
}

// TitleResponse is the read representation: nested category and genres plus
// the computed rating (null without reviews).
type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description *string           `json:"description"`
	Genre       []GenreResponse   `json:"genre"`
	Category    *CategoryResponse `json:"category"`
}

func (d CreateTitleDTO) ToModel() models.Title {
	t := models.Title{
		Name:        d.Name,
		Description: d.Description,
	}
	if d.Year != nil {
		t.Year = *d.Year
	}
	return t
}

func (d UpdateTitleDTO) ApplyTo(t *models.Title) {
	if d.Name != nil {
		t.Name = *d.Name
	}
	if d.Year != nil {
		t.Year = *d.Year
	}
	if d.Description != nil {
		t.Description = d.Description
	}
}

func FromModelToTitleResponse(t *models.Title) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      t.Rating,
		Description: t.Description,
		Genre:       MapSlice(t.Genres, FromModelToGenreResponse),
	}
	if t.Category != nil {
		c := FromModelToCategoryResponse(t.Category)
		resp.Category = &c
	}
	return resp
}

// TitleQuery holds the filters accepted by GET /titles/.
type TitleQuery struct {
	Genre    string `form:"genre"`
	Category string `form:"category"`
	Year     int    `form:"year" binding:"omitempty,min=1"`
	Name     string `form:"name"`
}
