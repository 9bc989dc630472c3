package service

import (
	"context"
	"net/http"

	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

type CommentService interface {
	List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error)
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	Create(ctx context.Context, actor *access.Actor, titleID, reviewID int64, req dto.CreateCommentDTO) (*dto.CommentResponse, error)
	Update(ctx context.Context, actor *access.Actor, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	Delete(ctx context.Context, actor *access.Actor, titleID, reviewID, commentID int64) error
}

type commentService struct {
	comments repository.CommentRepository
	reviews  repository.ReviewRepository
}

func NewCommentService(comments repository.CommentRepository, reviews repository.ReviewRepository) CommentService {
	return &commentService{comments: comments, reviews: reviews}
}

// requireReview resolves the review from the path. A review that exists but
// belongs to another title is treated as missing.
func (s *commentService) requireReview(ctx context.Context, titleID, reviewID int64) error {
	if _, err := s.reviews.GetByTitle(ctx, titleID, reviewID); err != nil {
		return notFound(err, "review")
	}
	return nil
}

func (s *commentService) List(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.Paginated[dto.CommentResponse], error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	list, total, err := s.comments.ListByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(list, dto.FromModelToCommentResponse), total, page, pageSize), nil
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	c, err := s.comments.GetByReview(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound(err, "comment")
	}
	resp := dto.FromModelToCommentResponse(c)
	return &resp, nil
}

func (s *commentService) Create(ctx context.Context, actor *access.Actor, titleID, reviewID int64, req dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if err := authorize(access.AuthorModeratorAdmin, http.MethodPost, actor, true); err != nil {
		return nil, err
	}
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.UserID,
		Text:     req.Text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.Get(ctx, titleID, reviewID, comment.ID)
}

func (s *commentService) Update(ctx context.Context, actor *access.Actor, titleID, reviewID, commentID int64, req dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByReview(ctx, reviewID, commentID)
	if err != nil {
		return nil, notFound(err, "comment")
	}
	if err := authorize(access.AuthorModeratorAdmin, http.MethodPatch, actor, actor.Owns(comment.AuthorID)); err != nil {
		return nil, err
	}

	if req.Text != nil {
		comment.Text = *req.Text
	}
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.Get(ctx, titleID, reviewID, commentID)
}

func (s *commentService) Delete(ctx context.Context, actor *access.Actor, titleID, reviewID, commentID int64) error {
	if err := s.requireReview(ctx, titleID, reviewID); err != nil {
		return err
	}
	comment, err := s.comments.GetByReview(ctx, reviewID, commentID)
	if err != nil {
		return notFound(err, "comment")
	}
	if err := authorize(access.AuthorModeratorAdmin, http.MethodDelete, actor, actor.Owns(comment.AuthorID)); err != nil {
		return err
	}
	return notFound(s.comments.Delete(ctx, comment.ID), "comment")
}
