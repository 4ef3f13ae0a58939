package models

import "time"

// User roles recognized by the auth gate.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User is an account that can log in: an inventory employee or an
// administrator reviewing their edits.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"-"`
}

// IsAdmin reports whether the user may approve or reject drafts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
