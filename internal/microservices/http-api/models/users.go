package models

import (
	"time"

	"yamdb/internal/access"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnusablePassword marks accounts that only sign in with an emailed
// confirmation code. It never matches a bcrypt hash.
const UnusablePassword = "!"

type User struct {
	ID        string      `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string      `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string      `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName string      `gorm:"size:150" json:"first_name"`
	LastName  string      `gorm:"size:150" json:"last_name"`
	Bio       string      `gorm:"type:text" json:"bio"`
	Role      access.Role `gorm:"size:16;default:'user';not null" json:"role"`
	Password  string      `gorm:"column:password_hash;not null" json:"-"`
	LastLogin *time.Time  `json:"last_login,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = access.RoleUser
	}
	if user.Password == "" {
		user.Password = UnusablePassword
	}
	return
}

func (user *User) HasUsablePassword() bool {
	return user.Password != "" && user.Password != UnusablePassword
}

// Actor is the identity this user acts as on a request.
func (user *User) Actor() *access.Actor {
	return &access.Actor{UserID: user.ID, Username: user.Username, Role: user.Role}
}

func (User) TableName() string {
	return "users"
}
