package service

import (
	"context"
	"strings"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/repository"
)

type GenreService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.GenreResponse], error)
	Create(ctx context.Context, req dto.CreateGenreDTO) (*dto.GenreResponse, error)
	Update(ctx context.Context, slug string, req dto.UpdateGenreDTO) (*dto.GenreResponse, error)
	Delete(ctx context.Context, slug string) error
}

type genreService struct {
	repo repository.GenreRepository
}

func NewGenreService(r repository.GenreRepository) GenreService {
	return &genreService{repo: r}
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.GenreResponse], error) {
	list, total, err := s.repo.List(ctx, strings.TrimSpace(search), page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(list, dto.FromModelToGenreResponse), total, page, pageSize), nil
}

func (s *genreService) Create(ctx context.Context, req dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	g := req.ToModel()
	g.Name = strings.TrimSpace(g.Name)

	v := &ValidationError{}
	validateName(v, g.Name)
	validateSlug(v, g.Slug)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, &g); err != nil {
		return nil, slugTaken(err, "genre")
	}
	resp := dto.FromModelToGenreResponse(&g)
	return &resp, nil
}

func (s *genreService) Update(ctx context.Context, slug string, req dto.UpdateGenreDTO) (*dto.GenreResponse, error) {
	g, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "genre")
	}
	req.ApplyTo(g)
	g.Name = strings.TrimSpace(g.Name)

	v := &ValidationError{}
	validateName(v, g.Name)
	validateSlug(v, g.Slug)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, g); err != nil {
		return nil, slugTaken(err, "genre")
	}
	resp := dto.FromModelToGenreResponse(g)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	g, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return notFound(err, "genre")
	}
	return notFound(s.repo.Delete(ctx, g.ID), "genre")
}
