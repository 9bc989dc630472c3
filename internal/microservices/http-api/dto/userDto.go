package dto

import (
	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/models"
)

// CreateUserDTO for admin POST /users/
type CreateUserDTO struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateUserDTO is used by PATCH /users/{username}/ and /users/me/
type UpdateUserDTO struct {
	Username  *string `json:"username" binding:"omitempty,max=150"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role" binding:"omitempty,oneof=user moderator admin"`
}

type UserResponse struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      access.Role `json:"role"`
}

func (d CreateUserDTO) ToModel() models.User {
	u := models.User{
		Username:  d.Username,
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Bio:       d.Bio,
		Role:      access.RoleUser,
	}
	if d.Role != "" {
		u.Role = access.Role(d.Role)
	}
	return u
}

// ApplyTo copies the present fields. The role is copied only when
// includeRole is set, self-service updates pass false.
func (d UpdateUserDTO) ApplyTo(u *models.User, includeRole bool) {
	if d.Username != nil {
		u.Username = *d.Username
	}
	if d.Email != nil {
		u.Email = *d.Email
	}
	if d.FirstName != nil {
		u.FirstName = *d.FirstName
	}
	if d.LastName != nil {
		u.LastName = *d.LastName
	}
	if d.Bio != nil {
		u.Bio = *d.Bio
	}
	if includeRole && d.Role != nil {
		u.Role = access.Role(*d.Role)
	}
}

func FromModelToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}
