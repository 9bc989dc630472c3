package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ReviewRepository reads and writes reviews. Every lookup is scoped to the
// title the review belongs to.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, reviewID int64) error
	GetByTitle(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create a new review. A second review by the same author on the same title
// fails with a unique violation, see IsUniqueViolation.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(review).Error; err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

// Update writes the editable fields only
func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	err := r.db.WithContext(ctx).
		Model(&models.Review{ID: review.ID}).
		Select("text", "score").
		Updates(map[string]any{"text": review.Text, "score": review.Score}).Error
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	return nil
}

// Delete a review together with its comments
func (r *reviewRepository) Delete(ctx context.Context, reviewID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete review comments: %w", err)
		}
		result := tx.Delete(&models.Review{}, reviewID)
		if result.Error != nil {
			return fmt.Errorf("delete review: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *reviewRepository) GetByTitle(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByTitle retrieves the reviews of a title, newest first
func (r *reviewRepository) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date DESC, id DESC").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}
