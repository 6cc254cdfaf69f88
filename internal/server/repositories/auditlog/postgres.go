package auditlog

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secretvault/internal/dbx"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.AuditRecord) error {
	query := `
		INSERT INTO audit_log (id, user_id, action, target_id, ip, user_agent, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Action, rec.TargetID, rec.IP, rec.UserAgent, rec.Success, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
