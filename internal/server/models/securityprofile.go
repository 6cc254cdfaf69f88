package models

import "time"

// SecurityProfile holds three independently salted answer hashes.
type SecurityProfile struct {
	UserID          string
	AnswerOneHash   string
	AnswerTwoHash   string
	AnswerThreeHash string
	CreatedAt       time.Time
}
