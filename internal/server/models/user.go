// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is owned by the identity subsystem. The vault core only reads it.
type User struct {
	ID                     string
	Email                  string
	PasswordHash           string
	TOTPSecret             string
	IsActive               bool
	SecurityProfileEnabled bool
	CreatedAt              time.Time
}
