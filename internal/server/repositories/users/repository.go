// Package users declares the read-only identity store contract used by the
// vault core and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/secretvault/internal/server/models"
)

// Repository looks users up. Implementations return common.ErrorNotFound
// when no row matches.
type Repository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
