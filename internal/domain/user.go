package domain

import (
	"time"
)

// User role constants.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered user of the marketplace.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsValidRole checks whether the given role string is a known role.
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
