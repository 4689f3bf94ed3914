package models

import "time"

// Account is a registered collector. FullName is optional; IsActive gates
// authentication but never affects specimens already attributed to the
// account.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
