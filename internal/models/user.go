package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRole determines which notification types a user's feed includes.
type UserRole string

const (
	RoleTenant   UserRole = "tenant"
	RoleLandlord UserRole = "landlord"
	RoleAdmin    UserRole = "admin"
)

// ValidUserRole reports whether the role is one of the closed set.
func ValidUserRole(role string) bool {
	switch UserRole(role) {
	case RoleTenant, RoleLandlord, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone" db:"phone"`
	Role      UserRole  `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
