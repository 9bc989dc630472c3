package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
)

type TitleService interface {
	List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titles     repository.TitleRepository
	categories repository.CategoryRepository
	genres     repository.GenreRepository
	now        func() time.Time
}

func NewTitleService(
	titles repository.TitleRepository,
	categories repository.CategoryRepository,
	genres repository.GenreRepository,
) TitleService {
	return &titleService{titles: titles, categories: categories, genres: genres, now: time.Now}
}

func (s *titleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	list, total, err := s.titles.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(list, dto.FromModelToTitleResponse), total, page, pageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	t, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "title")
	}
	resp := dto.FromModelToTitleResponse(t)
	return &resp, nil
}

func (s *titleService) Create(ctx context.Context, req dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	t := req.ToModel()
	t.Name = strings.TrimSpace(t.Name)

	v := &ValidationError{}
	validateName(v, t.Name)
	if req.Year == nil {
		v.Add("year", "this field is required")
	} else {
		validateYear(v, t.Year, s.now())
	}
	categoryID := s.resolveCategory(ctx, v, req.Category)
	genres := s.resolveGenres(ctx, v, req.Genre)
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	if categoryID.err != nil {
		return nil, categoryID.err
	}
	if genres.err != nil {
		return nil, genres.err
	}
	t.CategoryID = categoryID.id

	if err := s.titles.Create(ctx, &t, genres.list); err != nil {
		return nil, err
	}
	return s.Get(ctx, t.ID)
}

func (s *titleService) Update(ctx context.Context, id int64, req dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	t, err := s.titles.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "title")
	}
	req.ApplyTo(t)
	t.Name = strings.TrimSpace(t.Name)

	v := &ValidationError{}
	validateName(v, t.Name)
	if req.Year != nil {
		validateYear(v, t.Year, s.now())
	}
	var category resolvedCategory
	if req.Category != nil {
		category = s.resolveCategory(ctx, v, req.Category)
	}
	var genres resolvedGenres
	if req.Genre != nil {
		genres = s.resolveGenres(ctx, v, req.Genre)
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	if category.err != nil {
		return nil, category.err
	}
	if genres.err != nil {
		return nil, genres.err
	}
	if req.Category != nil {
		t.CategoryID = category.id
	}

	var newGenres []models.Genre
	if req.Genre != nil {
		newGenres = genres.list
		if newGenres == nil {
			newGenres = []models.Genre{}
		}
	}
	if err := s.titles.Update(ctx, t, newGenres); err != nil {
		return nil, notFound(err, "title")
	}
	return s.Get(ctx, t.ID)
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	return notFound(s.titles.Delete(ctx, id), "title")
}

type resolvedCategory struct {
	id  *int64
	err error
}

// resolveCategory looks the category up by slug. An unknown slug is a field
// error; a store failure is reported through err.
func (s *titleService) resolveCategory(ctx context.Context, v *ValidationError, slug *string) resolvedCategory {
	if slug == nil || *slug == "" {
		return resolvedCategory{}
	}
	c, err := s.categories.GetBySlug(ctx, *slug)
	if err != nil {
		if repository.IsNotFound(err) {
			v.Add("category", fmt.Sprintf("unknown category %q", *slug))
			return resolvedCategory{}
		}
		return resolvedCategory{err: err}
	}
	return resolvedCategory{id: &c.ID}
}

type resolvedGenres struct {
	list []models.Genre
	err  error
}

func (s *titleService) resolveGenres(ctx context.Context, v *ValidationError, slugs []string) resolvedGenres {
	if len(slugs) == 0 {
		return resolvedGenres{list: []models.Genre{}}
	}
	found, err := s.genres.GetBySlugs(ctx, slugs)
	if err != nil {
		return resolvedGenres{err: err}
	}
	known := make(map[string]bool, len(found))
	for _, g := range found {
		known[g.Slug] = true
	}
	for _, slug := range slugs {
		if !known[slug] {
			v.Add("genre", fmt.Sprintf("unknown genre %q", slug))
		}
	}
	return resolvedGenres{list: found}
}
