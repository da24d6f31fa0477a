package models

import (
	"strings"
	"time"
)

// Role IDs seeded in the roles table.
const (
	RoleAuthor = 1
	RoleEditor = 2
	RoleAdmin  = 3
)

type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	FullName  string     `gorm:"column:full_name" json:"full_name"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	RoleID    int        `gorm:"column:role_id" json:"role_id"`
	Country   *string    `gorm:"column:country" json:"country,omitempty"`
	Institute *string    `gorm:"column:institute" json:"institute,omitempty"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

// IsEditor reports whether the user holds the editor role.
func (u *User) IsEditor() bool {
	return u.RoleID == RoleEditor
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.RoleID == RoleAdmin
}

// CanReview reports whether the user may perform editor review actions.
func (u *User) CanReview() bool {
	return u.IsEditor() || u.IsAdmin()
}

// DisplayName returns the name used in notifications and emails.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FullName)
	if name == "" {
		return u.Email
	}
	return name
}
