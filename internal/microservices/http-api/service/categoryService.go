package service

import (
	"context"
	"strings"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/repository"
)

type CategoryService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.CategoryResponse], error)
	Create(ctx context.Context, req dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	Update(ctx context.Context, slug string, req dto.UpdateCategoryDTO) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, slug string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(r repository.CategoryRepository) CategoryService {
	return &categoryService{repo: r}
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.CategoryResponse], error) {
	list, total, err := s.repo.List(ctx, strings.TrimSpace(search), page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(list, dto.FromModelToCategoryResponse), total, page, pageSize), nil
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	c := req.ToModel()
	c.Name = strings.TrimSpace(c.Name)

	v := &ValidationError{}
	validateName(v, c.Name)
	validateSlug(v, c.Slug)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, slugTaken(err, "category")
	}
	resp := dto.FromModelToCategoryResponse(&c)
	return &resp, nil
}

func (s *categoryService) Update(ctx context.Context, slug string, req dto.UpdateCategoryDTO) (*dto.CategoryResponse, error) {
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "category")
	}
	req.ApplyTo(c)
	c.Name = strings.TrimSpace(c.Name)

	v := &ValidationError{}
	validateName(v, c.Name)
	validateSlug(v, c.Slug)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, slugTaken(err, "category")
	}
	resp := dto.FromModelToCategoryResponse(c)
	return &resp, nil
}

func (s *categoryService) Delete(ctx context.Context, slug string) error {
	c, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return notFound(err, "category")
	}
	return notFound(s.repo.Delete(ctx, c.ID), "category")
}

// slugTaken turns a unique violation on the slug into a field error.
func slugTaken(err error, what string) error {
	if repository.IsUniqueViolation(err) {
		return NewValidationError("slug", what+" with this slug already exists")
	}
	return err
}
