// Package models defines the persisted entities (User, Claim, Image), the
// pointer-based inputs used to create and update them, and their public
// projections.
package models

import (
	"strings"
	"time"
)

// User is an account. Email is globally unique and compared as stored.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserInput is an incoming user representation. A nil field is absent.
type UserInput struct {
	Email     *string `json:"email" binding:"omitempty,email,max=255"`
	FirstName *string `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,max=100"`
	Password  *string `json:"password" binding:"omitempty,min=6,max=72"`
}

// Validate reports missing required fields after a merge.
func (u *User) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(u.Email) == "" {
		errs["email"] = "Email is required"
	}
	if strings.TrimSpace(u.FirstName) == "" {
		errs["firstName"] = "First name is required"
	}
	if strings.TrimSpace(u.LastName) == "" {
		errs["lastName"] = "Last name is required"
	}
	if u.PasswordHash == "" {
		errs["password"] = "Password is required"
	}
	return errs
}
