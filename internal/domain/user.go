package domain

import "time"

// Role is the marketplace role a user acts under.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleDealer   Role = "DEALER"
	RoleDriver   Role = "DRIVER"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDealer, RoleDriver, RoleCustomer:
		return true
	}
	return false
}

// User represents an account on the marketplace.
type User struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	PasswordHash  string
	Role          Role
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Identity is an authenticated caller.
type Identity struct {
	UserID string
	Role   Role
}

// Is reports whether the caller holds any of the given roles.
func (i Identity) Is(roles ...Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}
