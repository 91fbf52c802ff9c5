package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
	RoleAdvertiser Role = "advertiser"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleModerator || r == RoleAdvertiser
}

type User struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Email        string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	FullName     string    `gorm:"column:full_name;size:120" json:"full_name"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// UserRole grants one role; a user may hold several rows.
type UserRole struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:36" json:"user_id"`
	Role      Role      `gorm:"column:role;primaryKey;size:16" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (UserRole) TableName() string { return "user_roles" }
