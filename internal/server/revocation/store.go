// Package revocation tracks revoked token identifiers until the tokens they
// revoke would have expired anyway. Backends are interchangeable: Memory for
// a single instance, Redis or Postgres when instances share state.
package revocation

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secretvault/internal/server/repositories/revokedtokens"
)

// Store is the keyed-expiry contract the token manager relies on. An expired
// record must read as absent whether or not it has been swept.
type Store interface {
	Exists(ctx context.Context, jti string) (bool, error)
	Upsert(ctx context.Context, jti string, expiresAt time.Time) error
	DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error)
}

// The revoked_tokens repository is the Postgres backend.
var _ Store = (revokedtokens.Repository)(nil)
