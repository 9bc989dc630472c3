package dto

import (
	"time"

	"yamdb/internal/microservices/http-api/models"
)

// CreateReviewDTO for POST /titles/{title_id}/reviews/
type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required"`
	Score int    `json:"score" binding:"required,min=1,max=10"`
}

// UpdateReviewDTO for PATCH; author and title cannot be changed
type UpdateReviewDTO struct {
	Text  *string `json:"text" binding:"omitempty,min=1"`
	Score *int    `json:"score" binding:"omitempty,min=1,max=10"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Title   int64     `json:"title"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func (d UpdateReviewDTO) ApplyTo(r *models.Review) {
	if d.Text != nil {
		r.Text = *d.Text
	}
	if d.Score != nil {
		r.Score = *d.Score
	}
}

// FromModelToReviewResponse converts a Review model to ReviewResponse DTO
func FromModelToReviewResponse(r *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Title:   r.TitleID,
		Text:    r.Text,
		Author:  r.Author.Username,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
