package models

import "time"

type RevokedToken struct {
	JTI       string
	ExpiresAt time.Time
	CreatedAt time.Time
}
