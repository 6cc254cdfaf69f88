package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/dbx"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.VaultEntry) error {
	query := `
		INSERT INTO vault_entries (id, user_id, platform_name, account_identifier, description,
			enc_algo, enc_iv, enc_tag, encrypted_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.PlatformName, e.AccountIdentifier, e.Description,
		e.Envelope.Algorithm, e.Envelope.Nonce, e.Envelope.Tag, e.Envelope.Ciphertext,
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id, ownerID string) (*models.VaultEntry, error) {
	query := `
		SELECT id, user_id, platform_name, account_identifier, description,
			enc_algo, enc_iv, enc_tag, encrypted_password, created_at, updated_at
		FROM vault_entries
		WHERE id = $1 AND user_id = $2
	`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.VaultEntry, error) {
	query := `
		SELECT id, user_id, platform_name, account_identifier, description,
			enc_algo, enc_iv, enc_tag, encrypted_password, created_at, updated_at
		FROM vault_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.VaultEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateEnvelope(ctx context.Context, id, ownerID string, env models.Envelope, updatedAt time.Time) error {
	query := `
		UPDATE vault_entries
		SET enc_algo = $3, enc_iv = $4, enc_tag = $5, encrypted_password = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, ownerID, env.Algorithm, env.Nonce, env.Tag, env.Ciphertext, updatedAt)
	return checkAffected(res, err)
}

func (r *PostgresRepository) UpdateDisplay(ctx context.Context, id, ownerID, platformName, accountIdentifier string, description *string, updatedAt time.Time) error {
	query := `
		UPDATE vault_entries
		SET platform_name = $3, account_identifier = $4, description = $5, updated_at = $6
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, ownerID, platformName, accountIdentifier, description, updatedAt)
	return checkAffected(res, err)
}

func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := `
		DELETE FROM vault_entries
		WHERE id = $1 AND user_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	return checkAffected(res, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.VaultEntry, error) {
	e := &models.VaultEntry{}
	var description sql.NullString
	err := row.Scan(&e.ID, &e.UserID, &e.PlatformName, &e.AccountIdentifier, &description,
		&e.Envelope.Algorithm, &e.Envelope.Nonce, &e.Envelope.Tag, &e.Envelope.Ciphertext,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		e.Description = &description.String
	}
	return e, nil
}

// checkAffected maps a zero-row write, or an id that is not a UUID, to not found.
func checkAffected(res sql.Result, err error) error {
	if dbx.IsInvalidText(err) {
		return common.ErrorNotFound
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
