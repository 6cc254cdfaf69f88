package profiles

import (
	"context"

	"github.com/dmitrijs2005/secretvault/internal/server/models"
)

// Repository stores the three hashed challenge answers of a user.
type Repository interface {
	// FindByUserID returns common.ErrorNotFound when no profile was set up.
	FindByUserID(ctx context.Context, userID string) (*models.SecurityProfile, error)

	// Create is single-shot: a second call for the same user returns
	// common.ErrAlreadyConfigured.
	Create(ctx context.Context, p *models.SecurityProfile) error
}
