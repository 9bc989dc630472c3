package dto

import (
	"time"

	"yamdb/internal/microservices/http-api/models"
)

// CreateCommentDTO for creating a comment
type CreateCommentDTO struct {
	Text string `json:"text" binding:"required,min=1"`
}

// UpdateCommentDTO for updating a comment
type UpdateCommentDTO struct {
	Text *string `json:"text" binding:"omitempty,min=1"`
}

type CommentResponse struct {
	ID      int64     `json:"id"`
	Review  int64     `json:"review"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse DTO
func FromModelToCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:      c.ID,
		Review:  c.ReviewID,
		Text:    c.Text,
		Author:  c.Author.Username,
		PubDate: c.PubDate,
	}
}
