package repository

import (
	"context"
	"fmt"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ratingColumn computes the average review score in the same statement as the
// title row. AVG over zero rows is NULL, which maps to a nil Rating.
const ratingColumn = "(SELECT CAST(AVG(reviews.score) AS DOUBLE PRECISION) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// TitleFilter narrows a title listing. Zero values are ignored.
type TitleFilter struct {
	Genre    string // genre slug
	Category string // category slug
	Year     int
	Name     string // case-insensitive substring
}

func (f TitleFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Genre != "" {
		db = db.Where(
			"EXISTS (SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id WHERE tg.title_id = titles.id AND g.slug = ?)",
			f.Genre,
		)
	}
	if f.Category != "" {
		db = db.Where("titles.category_id IN (SELECT id FROM categories WHERE slug = ?)", f.Category)
	}
	if f.Year != 0 {
		db = db.Where("titles.year = ?", f.Year)
	}
	if f.Name != "" {
		db = db.Where(`LOWER(titles.name) LIKE ? ESCAPE '\'`, containsPattern(f.Name))
	}
	return db
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// Create inserts the title and links genres in one transaction.
	Create(ctx context.Context, t *models.Title, genres []models.Genre) error
	// Update saves the scalar fields; a non-nil genres replaces the links.
	Update(ctx context.Context, t *models.Title, genres []models.Genre) error
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

// withRating selects the title columns plus the computed rating and preloads
// the nested category and genres.
func (r *titleRepository) withRating(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Title{}).
		Select("titles.*, " + ratingColumn).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.name asc") })
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	if err := filter.scope(r.db.WithContext(ctx).Model(&models.Title{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	if err := filter.scope(r.withRating(ctx)).
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("get titles: %w", err)
	}
	return list, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.withRating(ctx).Where("titles.id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *titleRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Title{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check title: %w", err)
	}
	return count > 0, nil
}

func (r *titleRepository) Create(ctx context.Context, t *models.Title, genres []models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Genres", "Category").Create(t).Error; err != nil {
			return fmt.Errorf("create title: %w", err)
		}
		if len(genres) > 0 {
			if err := tx.Model(t).Association("Genres").Append(&genres); err != nil {
				return fmt.Errorf("append genres: %w", err)
			}
		}
		return nil
	})
}

func (r *titleRepository) Update(ctx context.Context, t *models.Title, genres []models.Genre) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Title{ID: t.ID}).
			Select("name", "year", "description", "category_id").
			Updates(map[string]any{
				"name":        t.Name,
				"year":        t.Year,
				"description": t.Description,
				"category_id": t.CategoryID,
			})
		if result.Error != nil {
			return fmt.Errorf("update title: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if genres != nil {
			if err := tx.Model(&models.Title{ID: t.ID}).Association("Genres").Replace(&genres); err != nil {
				return fmt.Errorf("replace genres: %w", err)
			}
		}
		return nil
	})
}

// Delete removes the title with its genre links, reviews and their comments.
func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reviews := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviews).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete title comments: %w", err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("delete title reviews: %w", err)
		}
		if err := tx.Exec("DELETE FROM title_genres WHERE title_id = ?", id).Error; err != nil {
			return fmt.Errorf("unlink title genres: %w", err)
		}
		result := tx.Delete(&models.Title{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete title: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
