package grpc

import "time"

type Empty struct{}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest optionally carries the refresh token. The access token
// comes from request metadata.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type MeResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type Entry struct {
	ID                string    `json:"id"`
	PlatformName      string    `json:"platform_name"`
	AccountIdentifier string    `json:"account_identifier"`
	Description       *string   `json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CreateEntryRequest struct {
	PlatformName      string  `json:"platform_name"`
	AccountIdentifier string  `json:"account_identifier"`
	Description       *string `json:"description,omitempty"`
	Secret            string  `json:"secret"`
	Password          string  `json:"password"`
}

type ListEntriesResponse struct {
	Entries []*Entry `json:"entries"`
}

type UpdateEntryRequest struct {
	ID                string  `json:"id"`
	PlatformName      *string `json:"platform_name,omitempty"`
	AccountIdentifier *string `json:"account_identifier,omitempty"`
	Description       *string `json:"description,omitempty"`
	Secret            *string `json:"secret,omitempty"`
	Password          string  `json:"password,omitempty"`
}

type DeleteEntryRequest struct {
	ID string `json:"id"`
}

type RevealEntryRequest struct {
	ID       string   `json:"id"`
	Password string   `json:"password"`
	Answers  []string `json:"answers,omitempty"`
}

type RevealEntryResponse struct {
	Secret string `json:"secret"`
}

type SecurityProfileStatusResponse struct {
	Configured bool `json:"configured"`
}

type SecurityProfileAnswersRequest struct {
	Answers []string `json:"answers"`
}
