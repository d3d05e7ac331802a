package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered customer or back office operator.
type User struct {
	ID           int64
	Name         string `validate:"required,max=120"`
	Email        string `validate:"required,email,max=255"`
	PasswordHash string
	Phone        string `validate:"omitempty,max=32"`
	Role         Role   `validate:"required,oneof=user admin"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) Validate() error {
	return validateStruct(u)
}

// IsAdmin reports whether the user may use the back office.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
