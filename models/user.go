package models

import (
	"time"
)

// Role IDs. Routes gate on these via middleware.RequireRole.
const (
	RoleStudent  = 1
	RoleReviewer = 2
	RoleAdmin    = 3
)

// User is an account in the portal's identity directory. Unlike thesis
// records, users live in MySQL: role checks need a trusted source rather
// than a client-declared attribute.
type User struct {
	UserID     int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname  string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname  string     `gorm:"column:user_lname" json:"user_lname"`
	Email      string     `gorm:"column:email;unique" json:"email"`
	Password   string     `gorm:"column:password" json:"-"`
	RoleID     int        `gorm:"column:role_id" json:"role_id"`
	Department *string    `gorm:"column:department" json:"department,omitempty"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

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

// FullName returns the display name used on reviews and notifications.
func (u *User) FullName() string {
	if u.UserLname == "" {
		return u.UserFname
	}
	return u.UserFname + " " + u.UserLname
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}
