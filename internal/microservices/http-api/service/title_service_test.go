package service

import (
	"context"
	"testing"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type titleFixture struct {
	svc        *titleService
	titles     *MockTitleRepository
	categories *MockCategoryRepository
	genres     *MockGenreRepository
}

func newTitleFixture() *titleFixture {
	f := &titleFixture{
		titles:     new(MockTitleRepository),
		categories: new(MockCategoryRepository),
		genres:     new(MockGenreRepository),
	}
	f.svc = NewTitleService(f.titles, f.categories, f.genres).(*titleService)
	f.svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func intPtr(i int) *int          { return &i }
func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestTitleService_CreateReturnsReadRepresentation(t *testing.T) {
	ctx := context.Background()
	f := newTitleFixture()

	f.categories.On("GetBySlug", ctx, "film").Return(&models.Category{ID: 3, Name: "Film", Slug: "film"}, nil)
	drama := models.Genre{ID: 1, Name: "Drama", Slug: "drama"}
	f.genres.On("GetBySlugs", ctx, []string{"drama"}).Return([]models.Genre{drama}, nil)
	f.titles.On("Create", ctx, mock.MatchedBy(func(t *models.Title) bool {
		return t.CategoryID != nil && *t.CategoryID == 3 && t.Year == 1972
	}), []models.Genre{drama}).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Title).ID = 10
	}).Return(nil)
	f.titles.On("GetByID", ctx, int64(10)).Return(&models.Title{
		ID: 10, Name: "The Godfather", Year: 1972,
		Category: &models.Category{Name: "Film", Slug: "film"},
		Genres:   []models.Genre{drama},
	}, nil)

	resp, err := f.svc.Create(ctx, dto.CreateTitleDTO{
		Name: "The Godfather", Year: intPtr(1972), Category: strPtr("film"), Genre: []string{"drama"},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Rating)
	require.NotNil(t, resp.Category)
	assert.Equal(t, "film", resp.Category.Slug)
	assert.Equal(t, []dto.GenreResponse{{Name: "Drama", Slug: "drama"}}, resp.Genre)
}

func TestTitleService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newTitleFixture()
	f.categories.On("GetBySlug", ctx, "nope").Return(nil, gorm.ErrRecordNotFound)
	f.genres.On("GetBySlugs", ctx, []string{"drama", "ghost"}).Return([]models.Genre{{ID: 1, Slug: "drama"}}, nil)

	_, err := f.svc.Create(ctx, dto.CreateTitleDTO{
		Name: "Future", Year: intPtr(2999), Category: strPtr("nope"), Genre: []string{"drama", "ghost"},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "year")
	assert.Contains(t, verr.Fields, "category")
	assert.Contains(t, verr.Fields, "genre")
	f.titles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestTitleService_UpdateGenres(t *testing.T) {
	ctx := context.Background()

	t.Run("absent genre keeps links", func(t *testing.T) {
		f := newTitleFixture()
		f.titles.On("GetByID", ctx, int64(10)).Return(&models.Title{ID: 10, Name: "Heat", Year: 1995}, nil)
		f.titles.On("Update", ctx, mock.Anything, []models.Genre(nil)).Return(nil)

		_, err := f.svc.Update(ctx, 10, dto.UpdateTitleDTO{Name: strPtr("Heat (1995)")})
		require.NoError(t, err)
		f.titles.AssertCalled(t, "Update", ctx, mock.Anything, []models.Genre(nil))
	})

	t.Run("empty genre clears links", func(t *testing.T) {
		f := newTitleFixture()
		f.titles.On("GetByID", ctx, int64(10)).Return(&models.Title{ID: 10, Name: "Heat", Year: 1995}, nil)
		f.titles.On("Update", ctx, mock.Anything, []models.Genre{}).Return(nil)

		_, err := f.svc.Update(ctx, 10, dto.UpdateTitleDTO{Genre: []string{}})
		require.NoError(t, err)
		f.titles.AssertCalled(t, "Update", ctx, mock.Anything, []models.Genre{})
	})
}

func TestTitleService_ListPassesFilterAndRating(t *testing.T) {
	ctx := context.Background()
	f := newTitleFixture()
	filter := repository.TitleFilter{Genre: "drama", Year: 1972}
	f.titles.On("List", ctx, filter, 2, 5).Return([]models.Title{{ID: 1, Name: "A", Rating: floatPtr(7)}}, int64(6), nil)

	page, err := f.svc.List(ctx, filter, 2, 5)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 7.0, *page.Data[0].Rating)
	assert.Equal(t, 2, page.TotalPages)
}

func TestTitleService_DeleteMissing(t *testing.T) {
	ctx := context.Background()
	f := newTitleFixture()
	f.titles.On("Delete", ctx, int64(99)).Return(gorm.ErrRecordNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, 99), ErrNotFound)
}
