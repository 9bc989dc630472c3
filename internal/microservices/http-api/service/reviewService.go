package service

import (
	"context"
	"fmt"
	"net/http"

	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

// ReviewService works on the reviews of one title. Writes are checked
// against the author/moderator/admin rule.
type ReviewService interface {
	List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Create(ctx context.Context, actor *access.Actor, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, actor *access.Actor, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, actor *access.Actor, titleID, reviewID int64) error
}

type reviewService struct {
	reviews repository.ReviewRepository
	titles  repository.TitleRepository
}

func NewReviewService(reviews repository.ReviewRepository, titles repository.TitleRepository) ReviewService {
	return &reviewService{reviews: reviews, titles: titles}
}

func (s *reviewService) requireTitle(ctx context.Context, titleID int64) error {
	ok, err := s.titles.Exists(ctx, titleID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("title %w", ErrNotFound)
	}
	return nil
}

func (s *reviewService) List(ctx context.Context, titleID int64, page, pageSize int) (*dto.Paginated[dto.ReviewResponse], error) {
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	list, total, err := s.reviews.ListByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(list, dto.FromModelToReviewResponse), total, page, pageSize), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	r, err := s.reviews.GetByTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err, "review")
	}
	resp := dto.FromModelToReviewResponse(r)
	return &resp, nil
}

func (s *reviewService) Create(ctx context.Context, actor *access.Actor, titleID int64, req dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := authorize(access.AuthorModeratorAdmin, http.MethodPost, actor, true); err != nil {
		return nil, err
	}
	if err := s.requireTitle(ctx, titleID); err != nil {
		return nil, err
	}
	if req.Score < 1 || req.Score > 10 {
		return nil, NewValidationError("score", "must be between 1 and 10")
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: actor.UserID,
		Text:     req.Text,
		Score:    req.Score,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, NewValidationError("non_field_errors", "you have already reviewed this title")
		}
		return nil, err
	}
	return s.Get(ctx, titleID, review.ID)
}

func (s *reviewService) Update(ctx context.Context, actor *access.Actor, titleID, reviewID int64, req dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.reviews.GetByTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, notFound(err, "review")
	}
	if err := authorize(access.AuthorModeratorAdmin, http.MethodPatch, actor, actor.Owns(review.AuthorID)); err != nil {
		return nil, err
	}

	req.ApplyTo(review)
	if review.Score < 1 || review.Score > 10 {
		return nil, NewValidationError("score", "must be between 1 and 10")
	}
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}
	return s.Get(ctx, titleID, reviewID)
}

func (s *reviewService) Delete(ctx context.Context, actor *access.Actor, titleID, reviewID int64) error {
	review, err := s.reviews.GetByTitle(ctx, titleID, reviewID)
	if err != nil {
		return notFound(err, "review")
	}
	if err := authorize(access.AuthorModeratorAdmin, http.MethodDelete, actor, actor.Owns(review.AuthorID)); err != nil {
		return err
	}
	return notFound(s.reviews.Delete(ctx, review.ID), "review")
}
