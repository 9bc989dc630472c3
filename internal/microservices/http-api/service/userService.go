package service

import (
	"context"
	"strings"

	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/middleware/auth"
)

// UserService backs the admin user management endpoints and /users/me/.
type UserService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error)
	Create(ctx context.Context, req dto.CreateUserDTO) (*dto.UserResponse, error)
	Get(ctx context.Context, username string) (*dto.UserResponse, error)
	Update(ctx context.Context, username string, req dto.UpdateUserDTO) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
	Me(ctx context.Context, actor *access.Actor) (*dto.UserResponse, error)
	// UpdateMe applies a self-service edit. The role never changes here.
	UpdateMe(ctx context.Context, actor *access.Actor, req dto.UpdateUserDTO) (*dto.UserResponse, error)
	// CreateAdmin provisions an admin account with an optional password.
	CreateAdmin(ctx context.Context, username, email, password string) (*models.User, error)
}

type userService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.UserResponse], error) {
	list, total, err := s.users.List(ctx, strings.TrimSpace(search), page, pageSize)
	if err != nil {
		return nil, err
	}
	return dto.NewPaginated(dto.MapSlice(list, dto.FromModelToUserResponse), total, page, pageSize), nil
}

func (s *userService) Create(ctx context.Context, req dto.CreateUserDTO) (*dto.UserResponse, error) {
	u := req.ToModel()
	if err := s.validate(&u); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return nil, userTaken(err)
	}
	resp := dto.FromModelToUserResponse(&u)
	return &resp, nil
}

func (s *userService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user")
	}
	resp := dto.FromModelToUserResponse(u)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, username string, req dto.UpdateUserDTO) (*dto.UserResponse, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return s.save(ctx, u, req, true)
}

func (s *userService) Delete(ctx context.Context, username string) error {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return notFound(err, "user")
	}
	return notFound(s.users.Delete(ctx, u.ID), "user")
}

func (s *userService) Me(ctx context.Context, actor *access.Actor) (*dto.UserResponse, error) {
	u, err := s.self(ctx, actor)
	if err != nil {
		return nil, err
	}
	resp := dto.FromModelToUserResponse(u)
	return &resp, nil
}

func (s *userService) UpdateMe(ctx context.Context, actor *access.Actor, req dto.UpdateUserDTO) (*dto.UserResponse, error) {
	u, err := s.self(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, u, req, false)
}

func (s *userService) CreateAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	u := &models.User{Username: username, Email: email, Role: access.RoleAdmin}
	if err := s.validate(u); err != nil {
		return nil, err
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, userTaken(err)
	}
	return u, nil
}

func (s *userService) self(ctx context.Context, actor *access.Actor) (*models.User, error) {
	if err := authorize(access.Authenticated, "", actor, false); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, actor.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) save(ctx context.Context, u *models.User, req dto.UpdateUserDTO, includeRole bool) (*dto.UserResponse, error) {
	req.ApplyTo(u, includeRole)
	if err := s.validate(u); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, userTaken(err)
	}
	resp := dto.FromModelToUserResponse(u)
	return &resp, nil
}

func (s *userService) validate(u *models.User) error {
	v := &ValidationError{}
	validateUsername(v, u.Username)
	validateEmail(v, u.Email)
	if _, err := access.ParseRole(string(u.Role)); err != nil {
		v.Add("role", "must be one of user, moderator, admin")
	}
	return v.OrNil()
}

func userTaken(err error) error {
	if repository.IsUniqueViolation(err) {
		return NewValidationError("username", "a user with that username or email already exists")
	}
	return err
}
