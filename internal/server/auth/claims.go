package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the signed token body: sub, email, typ, jti, exp and iat.
type Claims struct {
	jwt.RegisteredClaims
	Email string    `json:"email"`
	Type  TokenType `json:"typ"`
}

// Payload is the decoded view of a verified token.
type Payload struct {
	Subject   string
	Email     string
	Type      TokenType
	ID        string
	ExpiresAt time.Time
}

func (c *Claims) payload() *Payload {
	p := &Payload{
		Subject: c.Subject,
		Email:   c.Email,
		Type:    c.Type,
		ID:      c.ID,
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
