package models

import "time"

type AuditRecord struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	TargetID  *string   `json:"target_id,omitempty"`
	IP        *string   `json:"ip,omitempty"`
	UserAgent *string   `json:"user_agent,omitempty"`
	Success   bool      `json:"success"`
	CreatedAt time.Time `json:"created_at"`
}

// RequestMeta carries caller details that end up in audit records.
type RequestMeta struct {
	IP        string
	UserAgent string
}
