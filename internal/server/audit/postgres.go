package audit

import (
	"context"

	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/auditlog"
)

type PostgresSink struct {
	repo auditlog.Repository
}

func NewPostgresSink(repo auditlog.Repository) *PostgresSink {
	return &PostgresSink{repo: repo}
}

func (s *PostgresSink) Write(ctx context.Context, rec *models.AuditRecord) error {
	return s.repo.Insert(ctx, rec)
}
