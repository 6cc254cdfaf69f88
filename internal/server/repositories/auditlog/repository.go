package auditlog

import (
	"context"

	"github.com/dmitrijs2005/secretvault/internal/server/models"
)

type Repository interface {
	Insert(ctx context.Context, rec *models.AuditRecord) error
}
