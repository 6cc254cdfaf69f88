// Package revokedtokens persists revoked token identifiers until the tokens
// would have expired on their own.
package revokedtokens

import (
	"context"
	"time"
)

type Repository interface {
	// Upsert is idempotent; revoking the same jti twice keeps one row.
	Upsert(ctx context.Context, jti string, expiresAt time.Time) error
	// Exists reports whether an unexpired revocation is recorded for jti.
	Exists(ctx context.Context, jti string) (bool, error)
	DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error)
}
