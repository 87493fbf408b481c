package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

type Department string

const (
	DeptFrontend Department = "frontend"
	DeptBackend  Department = "backend"
	DeptMobile   Department = "mobile"
	DeptQA       Department = "qa"
)

func (d Department) Valid() bool {
	switch d {
	case DeptFrontend, DeptBackend, DeptMobile, DeptQA:
		return true
	}
	return false
}

type User struct {
	UID           string     `gorm:"primaryKey;type:varchar(64)"`
	Email         string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Username      string     `gorm:"type:varchar(64)"`
	FirstName     string     `gorm:"type:varchar(64)"`
	LastName      string     `gorm:"type:varchar(64)"`
	Department    Department `gorm:"type:varchar(16)"`
	Role          Role       `gorm:"type:varchar(8);not null"`
	IsActive      bool       `gorm:"not null"`
	PasswordHash  string     `gorm:"type:varchar(255);not null"`
	PasswordReset bool       `gorm:"not null"`
	LastLoginAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
