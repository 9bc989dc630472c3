package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a private in-memory sqlite database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, role access.Role) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func createTitle(t *testing.T, db *gorm.DB, name string, genres ...models.Genre) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Year: 2000}
	require.NoError(t, NewTitleRepository(db).Create(context.Background(), title, genres))
	return title
}

func TestTitleRepository_Rating(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	titles := NewTitleRepository(db)
	reviews := NewReviewRepository(db)

	title := createTitle(t, db, "Solaris")

	got, err := titles.GetByID(ctx, title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Rating, "no reviews means no rating")

	for i, score := range []int{8, 6} {
		author := createUser(t, db, fmt.Sprintf("critic%d", i), access.RoleUser)
		require.NoError(t, reviews.Create(ctx, &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "ok", Score: score}))
	}

	got, err = titles.GetByID(ctx, title.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 7.0, *got.Rating, 1e-9)

	list, total, err := titles.List(ctx, TitleFilter{}, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Rating)
	assert.InDelta(t, 7.0, *list[0].Rating, 1e-9)
}

func TestReviewRepository_OnePerAuthorAndTitle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	reviews := NewReviewRepository(db)

	title := createTitle(t, db, "Stalker")
	author := createUser(t, db, "reader", access.RoleUser)

	require.NoError(t, reviews.Create(ctx, &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "first", Score: 9}))
	err := reviews.Create(ctx, &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "second", Score: 3})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	other := createTitle(t, db, "Mirror")
	assert.NoError(t, reviews.Create(ctx, &models.Review{TitleID: other.ID, AuthorID: author.ID, Text: "fine", Score: 5}))
}

func TestReviewRepository_ScopedToTitle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	reviews := NewReviewRepository(db)

	a := createTitle(t, db, "A")
	b := createTitle(t, db, "B")
	author := createUser(t, db, "scoped", access.RoleUser)
	review := &models.Review{TitleID: a.ID, AuthorID: author.ID, Text: "t", Score: 4}
	require.NoError(t, reviews.Create(ctx, review))

	got, err := reviews.GetByTitle(ctx, a.ID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "scoped", got.Author.Username)

	_, err = reviews.GetByTitle(ctx, b.ID, review.ID)
	assert.True(t, IsNotFound(err))

	list, total, err := reviews.ListByTitle(ctx, b.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestTitleRepository_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	genres := NewGenreRepository(db)
	categories := NewCategoryRepository(db)
	titles := NewTitleRepository(db)

	drama := &models.Genre{Name: "Drama", Slug: "drama"}
	comedy := &models.Genre{Name: "Comedy", Slug: "comedy"}
	require.NoError(t, genres.Create(ctx, drama))
	require.NoError(t, genres.Create(ctx, comedy))
	film := &models.Category{Name: "Film", Slug: "film"}
	require.NoError(t, categories.Create(ctx, film))

	godfather := &models.Title{Name: "The Godfather", Year: 1972, CategoryID: &film.ID}
	require.NoError(t, titles.Create(ctx, godfather, []models.Genre{*drama}))
	require.NoError(t, titles.Create(ctx, &models.Title{Name: "Airplane!", Year: 1980}, []models.Genre{*comedy}))

	cases := []struct {
		name   string
		filter TitleFilter
		want   []string
	}{
		{"no filter", TitleFilter{}, []string{"The Godfather", "Airplane!"}},
		{"genre", TitleFilter{Genre: "drama"}, []string{"The Godfather"}},
		{"category", TitleFilter{Category: "film"}, []string{"The Godfather"}},
		{"year", TitleFilter{Year: 1980}, []string{"Airplane!"}},
		{"name ignores case", TitleFilter{Name: "GODF"}, []string{"The Godfather"}},
		{"name underscore is literal", TitleFilter{Name: "_"}, nil},
		{"name percent is literal", TitleFilter{Name: "%"}, nil},
		{"name punctuation matches", TitleFilter{Name: "!"}, []string{"Airplane!"}},
		{"unknown genre", TitleFilter{Genre: "horror"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, total, err := titles.List(ctx, tc.filter, 1, 10)
			require.NoError(t, err)
			assert.EqualValues(t, len(tc.want), total)
			var names []string
			for _, ti := range list {
				names = append(names, ti.Name)
			}
			assert.Equal(t, tc.want, names)
		})
	}

	got, err := titles.GetByID(ctx, godfather.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Category)
	assert.Equal(t, "film", got.Category.Slug)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, "drama", got.Genres[0].Slug)
}

func TestTitleRepository_UpdateReplacesGenres(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	genres := NewGenreRepository(db)
	titles := NewTitleRepository(db)

	drama := &models.Genre{Name: "Drama", Slug: "drama"}
	crime := &models.Genre{Name: "Crime", Slug: "crime"}
	require.NoError(t, genres.Create(ctx, drama))
	require.NoError(t, genres.Create(ctx, crime))
	title := createTitle(t, db, "Heat", *drama)

	title.Year = 1995
	require.NoError(t, titles.Update(ctx, title, nil))
	got, err := titles.GetByID(ctx, title.ID)
	require.NoError(t, err)
	assert.Equal(t, 1995, got.Year)
	require.Len(t, got.Genres, 1, "nil genres keeps the links")

	require.NoError(t, titles.Update(ctx, title, []models.Genre{*crime}))
	got, err = titles.GetByID(ctx, title.ID)
	require.NoError(t, err)
	require.Len(t, got.Genres, 1)
	assert.Equal(t, "crime", got.Genres[0].Slug)

	assert.True(t, IsNotFound(titles.Update(ctx, &models.Title{ID: 999, Name: "x", Year: 1}, nil)))
}

func TestTitleRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	titles := NewTitleRepository(db)
	reviews := NewReviewRepository(db)
	comments := NewCommentRepository(db)

	drama := &models.Genre{Name: "Drama", Slug: "drama"}
	require.NoError(t, NewGenreRepository(db).Create(ctx, drama))
	title := createTitle(t, db, "Doomed", *drama)
	author := createUser(t, db, "author", access.RoleUser)
	review := &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "t", Score: 2}
	require.NoError(t, reviews.Create(ctx, review))
	require.NoError(t, comments.Create(ctx, &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "c"}))

	require.NoError(t, titles.Delete(ctx, title.ID))

	var n int64
	db.Model(&models.Review{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Comment{}).Count(&n)
	assert.Zero(t, n)
	db.Table("title_genres").Count(&n)
	assert.Zero(t, n)
	db.Model(&models.Genre{}).Count(&n)
	assert.EqualValues(t, 1, n, "genres survive")

	assert.True(t, IsNotFound(titles.Delete(ctx, title.ID)))
}

func TestCategoryRepository_DeleteNullsTitles(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)
	titles := NewTitleRepository(db)

	book := &models.Category{Name: "Book", Slug: "book"}
	require.NoError(t, categories.Create(ctx, book))
	title := &models.Title{Name: "Dune", Year: 1965, CategoryID: &book.ID}
	require.NoError(t, titles.Create(ctx, title, nil))

	require.NoError(t, categories.Delete(ctx, book.ID))

	got, err := titles.GetByID(ctx, title.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.Category)
}

func TestCategoryRepository_SearchAndDuplicateSlug(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)

	require.NoError(t, categories.Create(ctx, &models.Category{Name: "Music", Slug: "music"}))
	require.NoError(t, categories.Create(ctx, &models.Category{Name: "Movies", Slug: "movies"}))

	err := categories.Create(ctx, &models.Category{Name: "Other music", Slug: "music"})
	assert.True(t, IsUniqueViolation(err))

	list, total, err := categories.List(ctx, "mus", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "music", list[0].Slug)

	list, total, err = categories.List(ctx, "", 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Music", list[0].Name)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	categories := NewCategoryRepository(db)
	users := NewUserRepository(db)

	require.NoError(t, categories.Create(ctx, &models.Category{Name: "100% Drama", Slug: "drama"}))
	require.NoError(t, categories.Create(ctx, &models.Category{Name: "Books", Slug: "books"}))

	list, total, err := categories.List(ctx, "%", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "drama", list[0].Slug)

	_, total, err = categories.List(ctx, "_", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)

	createUser(t, db, "john_doe", access.RoleUser)
	createUser(t, db, "johnny", access.RoleUser)

	found, total, err := users.List(ctx, "john_", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, "john_doe", found[0].Username)
}

func TestGenreRepository_GetBySlugsAndDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	genres := NewGenreRepository(db)

	drama := &models.Genre{Name: "Drama", Slug: "drama"}
	require.NoError(t, genres.Create(ctx, drama))
	title := createTitle(t, db, "Linked", *drama)

	found, err := genres.GetBySlugs(ctx, []string{"drama", "missing"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	require.NoError(t, genres.Delete(ctx, drama.ID))
	got, err := NewTitleRepository(db).GetByID(ctx, title.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Genres)
}

func TestUserRepository_DeleteRemovesAuthoredContent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	reviews := NewReviewRepository(db)
	comments := NewCommentRepository(db)

	title := createTitle(t, db, "Shared")
	leaving := createUser(t, db, "leaving", access.RoleUser)
	staying := createUser(t, db, "staying", access.RoleUser)

	theirs := &models.Review{TitleID: title.ID, AuthorID: leaving.ID, Text: "t", Score: 1}
	mine := &models.Review{TitleID: title.ID, AuthorID: staying.ID, Text: "t", Score: 10}
	require.NoError(t, reviews.Create(ctx, theirs))
	require.NoError(t, reviews.Create(ctx, mine))
	require.NoError(t, comments.Create(ctx, &models.Comment{ReviewID: theirs.ID, AuthorID: staying.ID, Text: "reply"}))
	require.NoError(t, comments.Create(ctx, &models.Comment{ReviewID: mine.ID, AuthorID: leaving.ID, Text: "reply"}))
	require.NoError(t, comments.Create(ctx, &models.Comment{ReviewID: mine.ID, AuthorID: staying.ID, Text: "self"}))

	require.NoError(t, users.Delete(ctx, leaving.ID))

	var n int64
	db.Model(&models.Review{}).Count(&n)
	assert.EqualValues(t, 1, n)
	db.Model(&models.Comment{}).Count(&n)
	assert.EqualValues(t, 1, n)

	_, err := users.FindByID(ctx, leaving.ID)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(users.Delete(ctx, leaving.ID)))
}

func TestUserRepository_DefaultsAndLastLogin(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	u := &models.User{Username: "fresh", Email: "fresh@example.com"}
	require.NoError(t, users.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, access.RoleUser, u.Role)
	assert.False(t, u.HasUsablePassword())

	dup := &models.User{Username: "fresh", Email: "other@example.com"}
	assert.True(t, IsUniqueViolation(users.Create(ctx, dup)))

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, users.TouchLastLogin(ctx, u.ID, at))
	got, err := users.FindByEmail(ctx, "fresh@example.com")
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))

	list, total, err := users.List(ctx, "FRE", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "fresh", list[0].Username)
}

func TestRefreshTokenRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	tokens := NewRefreshTokenRepository(db)
	u := createUser(t, db, "holder", access.RoleUser)

	live := &models.RefreshToken{ID: uuid.NewString(), UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}
	stale := &models.RefreshToken{ID: uuid.NewString(), UserID: u.ID, ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, tokens.Create(ctx, live))
	require.NoError(t, tokens.Create(ctx, stale))

	require.NoError(t, tokens.RevokeAllForUser(ctx, u.ID))
	got, err := tokens.FindByID(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, got.Revoked)

	n, err := tokens.DeleteExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = tokens.FindByID(ctx, stale.ID)
	assert.True(t, IsNotFound(err))
}
