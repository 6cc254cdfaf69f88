// Package entries declares the vault entry store contract. Every call is
// keyed by owner so per-user isolation holds at the storage boundary too.
package entries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/secretvault/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.VaultEntry) error

	// FindByID returns common.ErrorNotFound when the entry does not exist or
	// belongs to another owner.
	FindByID(ctx context.Context, id, ownerID string) (*models.VaultEntry, error)

	// ListByOwner returns the owner's entries, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.VaultEntry, error)

	// UpdateEnvelope replaces algorithm, nonce, tag and ciphertext in one statement.
	UpdateEnvelope(ctx context.Context, id, ownerID string, env models.Envelope, updatedAt time.Time) error

	UpdateDisplay(ctx context.Context, id, ownerID, platformName, accountIdentifier string, description *string, updatedAt time.Time) error

	Delete(ctx context.Context, id, ownerID string) error
}
