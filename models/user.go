package models

import (
	"fmt"
	"strings"
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleStaff UserRole = "STAFF"
)

// Roles lists every role, in privilege order.
var Roles = []UserRole{RoleAdmin, RoleStaff}

// ParseRole maps user input onto the closed role set.
func ParseRole(s string) (UserRole, error) {
	switch UserRole(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStaff:
		return RoleStaff, nil
	default:
		return "", fmt.Errorf("unknown role %q: must be ADMIN or STAFF", s)
	}
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff:
		return true
	default:
		return false
	}
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"type:varchar(16);not null;default:'STAFF'"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
