// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the closed set of account roles. Authorization checks compare
// against these constants exactly (case-sensitive, no hierarchy); an admin
// is not implicitly an owner or a student.
type Role string

const (
	RoleStudent Role = "student"
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the three known roles. Signup rejects
// anything else, so an unknown role can never reach an authorization check.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered account.
//
// Email is normalized to lower case at write time and is unique in the
// store. PasswordHash holds a bcrypt hash, never the plaintext, and is
// excluded from JSON so it can never leak into a response.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
