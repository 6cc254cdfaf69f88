package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/secretvault/internal/dbx"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/auditlog"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/entries"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/secretvault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Entries(db dbx.DBTX) entries.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
	AuditLog(db dbx.DBTX) auditlog.Repository
}
