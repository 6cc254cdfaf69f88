// Package common defines shared constants and sentinel errors used across
// the secretvault server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors.
	ErrInvalidInput = errors.New("invalid input")

	// Auth errors (invalid, expired, revoked or mistyped token).
	ErrInvalidToken = errors.New("invalid token")

	// Disclosure errors. ErrInvalidCredentials covers both a
	// wrong re-auth password and a corrupted envelope.
	ErrRateLimited          = errors.New("rate limited")
	ErrChallengeFailed      = errors.New("challenge failed")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrProfileNotConfigured = errors.New("security profile not configured")
	ErrAlreadyConfigured    = errors.New("security profile already configured")
)
