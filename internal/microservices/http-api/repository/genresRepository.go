package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Genre, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Create(ctx context.Context, g *models.Genre) error
	Update(ctx context.Context, g *models.Genre) error
	Delete(ctx context.Context, id int64) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	var list []models.Genre
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Genre{})
	if search != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(search))
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}
	if err := q.Order("name asc").Limit(pageSize).Offset(offset(page, pageSize)).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get genres: %w", err)
	}
	return list, total, nil
}

func (r *genreRepository) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var g models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

// GetBySlugs returns the genres whose slug is listed. Unknown slugs are simply
// missing from the result.
func (r *genreRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	var list []models.Genre
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("name asc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("get genres by slug: %w", err)
	}
	return list, nil
}

func (r *genreRepository) Create(ctx context.Context, g *models.Genre) error {
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("create genre: %w", err)
	}
	return nil
}

func (r *genreRepository) Update(ctx context.Context, g *models.Genre) error {
	if err := r.db.WithContext(ctx).Save(g).Error; err != nil {
		return fmt.Errorf("update genre: %w", err)
	}
	return nil
}

// Delete removes the genre and its title links; the titles themselves stay.
func (r *genreRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", id).Error; err != nil {
			return fmt.Errorf("unlink genre: %w", err)
		}
		result := tx.Delete(&models.Genre{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete genre: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
